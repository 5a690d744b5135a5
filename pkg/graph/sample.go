package graph

// SampleNetwork returns the demonstration case network: one suspect, their
// phone, a frequented location and a file they created.
func SampleNetwork() Snapshot {
	return Snapshot{
		Entities: []Entity{
			{ID: "john_doe", Kind: KindPerson, DisplayName: "John Doe", Position: Point{X: 200, Y: 200},
				ArtifactIDs: []string{"MSG_001", "CALL_001", "CONTACT_001", "TXN_002"}},
			{ID: "phone_123", Kind: KindPhone, DisplayName: "+1-555-0123", Position: Point{X: 350, Y: 150},
				ArtifactIDs: []string{"CALL_001", "CALL_002", "CONTACT_001"}},
			{ID: "location_1", Kind: KindLocation, DisplayName: "New York, NY", Position: Point{X: 150, Y: 350},
				ArtifactIDs: []string{"LOC_001", "LOC_002"}},
			{ID: "file_1", Kind: KindFile, DisplayName: "transfer_001.jpg", Position: Point{X: 400, Y: 250},
				ArtifactIDs: []string{"FILE_001"}},
		},
		Relationships: []Relationship{
			{From: "john_doe", To: "phone_123", Kind: "owns", Weight: 5},
			{From: "phone_123", To: "location_1", Kind: "located_at", Weight: 8},
			{From: "john_doe", To: "location_1", Kind: "visited", Weight: 4},
			{From: "john_doe", To: "file_1", Kind: "created", Weight: 3},
		},
	}
}
