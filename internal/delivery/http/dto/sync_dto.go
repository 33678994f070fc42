package dto

// TriggerOutput reports whether a background job was started
type TriggerOutput struct {
	Started bool `json:"started"`
}
