package upstream

// Wire shapes of the proxy function routes under /functions/v1.

type StocksRequest struct {
	Symbols []string `json:"symbols,omitempty"`
}

type StocksResponse struct {
	Stocks []StockQuote `json:"stocks"`
}

type NewsRequest struct {
	Category string `json:"category,omitempty"`
}

type NewsResponse struct {
	News []NewsItem `json:"news"`
}

type SportsRequest struct {
	League string `json:"league,omitempty"`
}

type SportsResponse struct {
	Scores []SportsScore `json:"scores"`
}

// ErrorResponse is the body of every failed proxy call.
type ErrorResponse struct {
	Error string `json:"error"`
}
