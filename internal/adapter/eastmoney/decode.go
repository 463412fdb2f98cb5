package eastmoney

import (
	"io"
	"mime"
	"net/http"
	"strings"

	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

// bodyReader wraps the response body with a GBK decoder when the provider
// declares one. Several of the older quote endpoints still answer in GBK.
func bodyReader(resp *http.Response) io.Reader {
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		return resp.Body
	}

	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return resp.Body
	}

	switch strings.ToLower(params["charset"]) {
	case "gbk", "gb2312", "gb18030":
		return transform.NewReader(resp.Body, simplifiedchinese.GB18030.NewDecoder())
	default:
		return resp.Body
	}
}
