package portal

import "net/url"

// PostData is the login form sent to the gateway. It is built once per
// session and never modified; Form returns a fresh copy on every call.
type PostData struct {
	username string
	password string
	acID     string
	userIP   string
}

func NewPostData(username, password, acID, userIP string) PostData {
	return PostData{
		username: username,
		password: password,
		acID:     acID,
		userIP:   userIP,
	}
}

func (p PostData) Username() string { return p.username }
func (p PostData) UserIP() string   { return p.userIP }

// Form encodes the fixed field set. Logout sends the same form: the gateway
// toggles the session itself, so action stays "login".
func (p PostData) Form() url.Values {
	return url.Values{
		"username": {p.username},
		"password": {p.password},
		"action":   {"login"},
		"ac_id":    {p.acID},
		"user_ip":  {p.userIP},
		"nas_ip":   {""},
		"user_mac": {""},
		"url":      {""},
	}
}
