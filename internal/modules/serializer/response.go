package serializer

import "net/http"

const (
	CodeParamErr         = 40001
	CodeForbidden        = 40300
	CodeNotFound         = 40400
	CodeConflict         = 40900
	CodePayloadTooLarge  = 41300
	CodeFailedDependency = 42400
	CodeDBErr            = 50001
)

// Response is the envelope of every JSON reply.
type Response struct {
	Code  int         `json:"code"`
	Data  interface{} `json:"data,omitempty"`
	Msg   string      `json:"message"`
	Error string      `json:"error,omitempty"`
}

// Err builds an error response. Msg falls back to the error text.
func Err(code int, msg string, err error) Response {
	res := Response{Code: code, Msg: msg}
	if err != nil {
		if msg == "" {
			res.Msg = err.Error()
		}
		res.Error = err.Error()
	}
	if res.Msg == "" {
		res.Msg = http.StatusText(code / 100)
	}
	return res
}

func ParamErr(msg string, err error) Response {
	if msg == "" && err == nil {
		msg = "invalid parameters"
	}
	return Err(CodeParamErr, msg, err)
}

func DBErr(msg string, err error) Response {
	if msg == "" {
		msg = "internal error"
	}
	return Err(CodeDBErr, msg, err)
}
