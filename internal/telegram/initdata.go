package telegram

import (
	"encoding/json"
	"net/url"
	"strings"
)

// UserIDFromInitData extracts the numeric user id from Telegram WebApp
// initData, a query string whose user field carries url-encoded JSON.
func UserIDFromInitData(initData string) (string, bool) {
	// ParseQuery keeps the pairs it could parse even when it reports an
	// error, so malformed escapes elsewhere in the string don't matter.
	params, _ := url.ParseQuery(initData)
	userParam := params.Get("user")
	if userParam == "" {
		return "", false
	}

	// Some clients double-encode the user payload.
	if decoded, err := url.QueryUnescape(userParam); err == nil {
		userParam = decoded
	}

	var user struct {
		ID json.Number `json:"id"`
	}
	dec := json.NewDecoder(strings.NewReader(userParam))
	dec.UseNumber()
	if err := dec.Decode(&user); err != nil {
		return "", false
	}

	id := user.ID.String()
	if id == "" || id == "0" {
		return "", false
	}
	return id, true
}
