package artifact

import "time"

func at(hour, min, sec int) time.Time {
	return time.Date(2024, time.January, 14, hour, min, sec, 0, time.UTC)
}

// SampleCase returns the evidence extracted from the demonstration device,
// in ingestion order.
func SampleCase() []Artifact {
	return []Artifact{
		{ID: "MSG_001", Type: TypeMessage, Content: "Meeting at bitcoin address 1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa tomorrow", Timestamp: at(15, 30, 22), SourceSystem: "WhatsApp"},
		{ID: "MSG_002", Type: TypeMessage, Content: "Confirm the drop location before 4pm", Timestamp: at(15, 32, 10), SourceSystem: "WhatsApp"},
		{ID: "MSG_047", Type: TypeMessage, Content: "Send the BTC to the usual wallet, not the exchange", Timestamp: at(16, 2, 41), SourceSystem: "Telegram"},
		{ID: "MSG_089", Type: TypeMessage, Content: "Funds received at 1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa, moving them tonight", Timestamp: at(16, 40, 5), SourceSystem: "Telegram"},
		{ID: "CALL_001", Type: TypeCallLog, Content: "Call to +1-555-0123 duration 5:23", Timestamp: at(14, 22, 11), SourceSystem: "Phone System"},
		{ID: "CALL_002", Type: TypeCallLog, Content: "Outgoing call to +1-555-0123 duration 3:45", Timestamp: at(16, 48, 55), SourceSystem: "Phone System"},
		{ID: "CONTACT_001", Type: TypeContact, Content: "John Doe +1-555-0123", Timestamp: at(10, 15, 0), SourceSystem: "Address Book"},
		{ID: "TXN_001", Type: TypeTransaction, Content: "Transfer of 0.25 BTC to address 3J98t1WpEZ73CNmQviecrnyiWrnqRhWNLy", Timestamp: at(12, 5, 47), SourceSystem: "Blockchain Explorer"},
		{ID: "TXN_002", Type: TypeTransaction, Content: "Transfer of 0.75 BTC to address 1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa", Timestamp: at(16, 15, 33), SourceSystem: "Blockchain Explorer"},
		{ID: "TXN_015", Type: TypeTransaction, Content: "Transfer of 1.10 BTC from address 1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa to exchange wallet", Timestamp: at(18, 20, 9), SourceSystem: "Blockchain Explorer"},
		{ID: "LOC_001", Type: TypeLocation, Content: "Device location: 40.7128,-74.0060 (Financial District, NYC)", Timestamp: at(15, 45, 12), SourceSystem: "GPS"},
		{ID: "LOC_002", Type: TypeLocation, Content: "Device location: 40.7580,-73.9855 (Times Square, NYC)", Timestamp: at(17, 10, 30), SourceSystem: "GPS"},
		{ID: "FILE_001", Type: TypeFile, Content: "transfer_001.jpg: screenshot of a wallet transfer confirmation", Timestamp: at(16, 18, 2), SourceSystem: "Gallery"},
	}
}
