package ptv

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
	"strings"
)

// SignPath appends the developer id and the request signature to a request path.
//
// The signature is the hex encoded HMAC-SHA1 of the path including the devid
// parameter, keyed with the shared secret. The service recomputes it over the
// exact same string, so parameter order and separators must not change.
func SignPath(path, devID, key string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	request := path + sep + "devid=" + devID

	mac := hmac.New(sha1.New, []byte(key))
	mac.Write([]byte(request))
	signature := hex.EncodeToString(mac.Sum(nil))

	return request + "&signature=" + signature
}
