package backend

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/fitly/fitly/internal/common"
)

// apiError covers the message fields the service's sub-APIs use.
// Auth reports msg/error_description, the table and storage APIs message.
type apiError struct {
	Msg       string `json:"msg"`
	Message   string `json:"message"`
	ErrorDesc string `json:"error_description"`
	ErrorCode string `json:"error"`
}

func (e *apiError) text() string {
	for _, s := range []string{e.Msg, e.Message, e.ErrorDesc, e.ErrorCode} {
		if strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

// backendError turns a non-2xx response into a KindBackend error carrying
// the service's own message when one is present.
func backendError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 8<<10))

	var ae apiError
	msg := ""
	if err := json.Unmarshal(body, &ae); err == nil {
		msg = ae.text()
	}
	if msg == "" {
		msg = fmt.Sprintf("unexpected status %s", resp.Status)
	}
	return common.NewError(common.KindBackend, msg, fmt.Errorf("status %d", resp.StatusCode))
}
