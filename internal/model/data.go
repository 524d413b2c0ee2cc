package model

import "encoding/json"

// DataItem is one free-form JSON object of the generic data collection
// served by export and replaced by bulk load.
type DataItem = json.RawMessage
