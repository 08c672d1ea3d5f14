package models

// Attachment is the single pending file a session may carry into its next
// turn. EncodedPayload is the base64 form embedded in the outbound request;
// PreviewRef is a renderable data URI the transport treats as opaque.
type Attachment struct {
	EncodedPayload string `json:"encoded_payload"`
	DisplayName    string `json:"display_name"`
	PreviewRef     string `json:"preview_ref"`
}
