package models

// DeliveryJob names one destination for the rendered artifact. AccessKey
// references credentials previously registered with the credential store;
// Credentials may instead carry them inline.
type DeliveryJob struct {
	Type        string            `json:"type"` // "directServe", "s3", "gcs" or "sftp"
	AccessKey   string            `json:"accessKey,omitempty"`
	Credentials map[string]string `json:"credentials,omitempty"`
}

// RenderJob is the async-job envelope around a composition request: where to
// deliver the result and whom to notify.
type RenderJob struct {
	CallbackURL     string            `json:"callbackUrl,omitempty"`
	CallbackHeaders map[string]string `json:"callbackHeaders,omitempty"`
	SubDir          string            `json:"subDir,omitempty"` // logical subfolder at the destination
	Deliveries      []DeliveryJob     `json:"deliveries,omitempty"`
}

// CallbackClaims is the payload of a signed completion callback.
type CallbackClaims struct {
	Issuer    string `json:"iss"`
	Token     string `json:"sub"` // job token
	IssuedAt  int64  `json:"iat"`
	Status    string `json:"status"`
	ElapsedMS int64  `json:"elapsedMs"`
	SizeBytes int64  `json:"sizeBytes,omitempty"`
	Error     string `json:"error,omitempty"`
}
