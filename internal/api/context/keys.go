package context

type Key string

const (
	Claims    Key = "claims"
	RawToken  Key = "raw_token"
	Developer Key = "developer"
	Params    Key = "params"
)
