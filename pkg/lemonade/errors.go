package lemonade

// ErrorKind classifies a failed call to the server.
type ErrorKind int

const (
	// ErrorKindRequest covers transport failures: refused connections, DNS, timeouts.
	ErrorKindRequest ErrorKind = iota
	// ErrorKindHTTP is a response with a non-2xx status.
	ErrorKindHTTP
	// ErrorKindJSONDecode is a response body that is not valid JSON.
	ErrorKindJSONDecode
)

// String returns the kind name used by FormatError.
func (k ErrorKind) String() string {
	switch k {
	case ErrorKindHTTP:
		return "HTTPError"
	case ErrorKindJSONDecode:
		return "JSONDecodeError"
	default:
		return "RequestError"
	}
}

func (k ErrorKind) prefix() string {
	switch k {
	case ErrorKindHTTP:
		return "HTTP Error"
	case ErrorKindJSONDecode:
		return "JSON Decode Error"
	default:
		return "Request Error"
	}
}

// RequestError describes why a request to the server failed
type RequestError struct {
	Kind       ErrorKind
	URL        string
	StatusCode int
	Body       string
	Cause      error
}

func (e *RequestError) Error() string {
	return e.Kind.prefix() + ": " + e.detail()
}

func (e *RequestError) detail() string {
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return "unknown error for url " + e.URL
}

func (e *RequestError) Unwrap() error {
	return e.Cause
}

// errorResponse converts err into the {"error": message} form returned to callers.
func errorResponse(err error) Response {
	return Response{"error": err.Error()}
}
