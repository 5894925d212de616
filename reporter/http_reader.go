// Reader is a client of the http reporter, used by the user tool and tests.

package reporter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/TEENet-io/renbridge-go/agreement"
	"github.com/TEENet-io/renbridge-go/auth"
)

type HttpReader struct {
	serverIP   string // listen ip
	serverPort string // listen port
}

func NewHttpReader(serverIP string, serverPort string) *HttpReader {
	return &HttpReader{
		serverIP:   serverIP,
		serverPort: serverPort,
	}
}

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http status %d: %s", e.Code, e.Body)
}

func (hr *HttpReader) url(route string) string {
	return "http://" + hr.serverIP + ":" + hr.serverPort + route
}

func (hr *HttpReader) GetHello() (string, error) {
	resp, err := http.Get(hr.url(ROUTE_HELLO))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	// Read the response body
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	// Convert the body to a string
	return string(body), nil
}

// SubmitMint posts claim. Rejections come back as a JSONAdmission along
// with a *StatusError.
func (hr *HttpReader) SubmitMint(claim *agreement.MintClaim) (*JSONAdmission, error) {
	var out JSONAdmission
	err := hr.post(ROUTE_MINT, NewJSONMintClaim(claim), &out)
	return &out, err
}

func (hr *HttpReader) SubmitBurn(req *auth.SignedBurn) (agreement.BurnEventId, error) {
	var out JSONBurnResult
	if err := hr.post(ROUTE_BURN, req.ToJSON(), &out); err != nil {
		return 0, err
	}
	return agreement.BurnEventId(out.Id), nil
}

func (hr *HttpReader) GetBurnEvent(id agreement.BurnEventId) (*agreement.JSONBurnEvent, error) {
	var out struct {
		Data *agreement.JSONBurnEvent `json:"data"`
	}
	route := strings.Replace(ROUTE_BURN_EVENT, ":id", strconv.FormatUint(uint64(id), 10), 1)
	if err := hr.get(route, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (hr *HttpReader) GetBurnEvents(from agreement.BurnEventId, limit int) ([]*agreement.JSONBurnEvent, error) {
	var out struct {
		Data []*agreement.JSONBurnEvent `json:"data"`
	}
	route := fmt.Sprintf("%s?from=%d&limit=%d", ROUTE_BURN_EVENTS, from, limit)
	if err := hr.get(route, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (hr *HttpReader) GetBalance(account agreement.AccountId) (*JSONBalance, error) {
	var out JSONBalance
	route := strings.Replace(ROUTE_BALANCE, ":account", account.String(), 1)
	if err := hr.get(route, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (hr *HttpReader) IsConsumed(sig agreement.Signature) (bool, error) {
	var out JSONSignatureStatus
	route := strings.Replace(ROUTE_SIGNATURE, ":sig", sig.String(), 1)
	if err := hr.get(route, &out); err != nil {
		return false, err
	}
	return out.Consumed, nil
}

func (hr *HttpReader) get(route string, out interface{}) error {
	resp, err := http.Get(hr.url(route))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decodeResponse(resp, out)
}

func (hr *HttpReader) post(route string, in interface{}, out interface{}) error {
	b, err := json.Marshal(in)
	if err != nil {
		return err
	}
	resp, err := http.Post(hr.url(route), "application/json", bytes.NewReader(b))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decodeResponse(resp, out)
}

// The body is decoded into out even for error statuses, so that callers
// can look at structured rejections.
func decodeResponse(resp *http.Response, out interface{}) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	jsonErr := json.Unmarshal(body, out)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Code: resp.StatusCode, Body: string(body)}
	}
	return jsonErr
}
