package apperr

// Error messages.
const (
	MsgDeckCodeRequired  = "Enter a deck code"
	MsgDeckCodeDuplicate = "This deck code has already been added"

	MsgBulkNoData        = "No valid data found"
	MsgBulkProcessFailed = "An error occurred during bulk processing"
	MsgBulkNoDecksAdded  = "No decks could be added"

	MsgStorageQuotaExceeded = "Storage is full. Remove decks you no longer need"
	MsgStorageSaveFailed    = "Failed to save data"
	MsgStorageLoadFailed    = "Failed to load data"
	MsgStorageParseFailed   = "Saved data is in an unexpected format"

	MsgNetworkConnection = "Network connection error. Check your internet connection"

	MsgValidationEmptyInput = "Input is empty"
)

// Success messages.
const (
	MsgDeckAdded       = "Deck added"
	MsgDecksBulkAdded  = "Decks added"
	MsgAllDecksCleared = "All decks cleared"
)
