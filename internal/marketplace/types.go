package marketplace

// Messages the callback page posts to the opener window.
const (
	MessageSuccess = "ML_CONNECTION_SUCCESS"
	MessageError   = "ML_CONNECTION_ERROR"
)

// ConnectRequest is the connect-store form. The same rules run in the
// browser-side flow before anything is sent.
type ConnectRequest struct {
	SiteID    string `json:"site_id" validate:"required,len=3"`
	AppID     string `json:"app_id" validate:"required,numeric,min=6,max=20"`
	AppSecret string `json:"app_secret" validate:"required,alphanum,min=20,max=64"`
	StoreName string `json:"store_name" validate:"required,max=100"`
}

// ConnectResponse tells the user where to authorize the store.
type ConnectResponse struct {
	StoreID      string   `json:"store_id"`
	AuthURL      string   `json:"auth_url"`
	RedirectURI  string   `json:"redirect_uri"`
	Instructions []string `json:"instructions"`
}
