package logic

// HTTPError carries a status code and the detail string rendered to clients.
type HTTPError struct {
	Status int
	Detail string
}

func (e *HTTPError) Error() string { return e.Detail }

func newHTTPError(status int, detail string) *HTTPError {
	return &HTTPError{Status: status, Detail: detail}
}
