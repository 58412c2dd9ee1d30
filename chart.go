package snapback

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/vbert/snapback/date"
)

// DecodeChart parses a finance-chart JSON document (the Yahoo chart API
// shape) and returns the ticker with its daily closing prices.
//
// Closes are matched to timestamps positionally; a null close (halted day)
// is skipped. The result can be merged into a Market and re-exported with
// EncodeMarket.
func DecodeChart(r io.Reader) (ticker string, closes *date.History[float64], err error) {
	var jobj any
	if err := json.NewDecoder(r).Decode(&jobj); err != nil {
		return "", nil, fmt.Errorf("cannot parse chart document: %w", err)
	}

	jval, err := jsonpath.Get("$.chart.result[0].meta.symbol", jobj)
	if err != nil {
		return "", nil, fmt.Errorf("cannot find symbol in chart document: %w", err)
	}
	ticker, ok := first(jval).(string)
	if !ok || ticker == "" {
		return "", nil, fmt.Errorf("chart symbol is not a string: %v", jval)
	}

	jts, err := jsonpath.Get("$.chart.result[0].timestamp", jobj)
	if err != nil {
		return "", nil, fmt.Errorf("cannot find timestamps in chart document: %w", err)
	}
	timestamps, ok := jts.([]any)
	if !ok {
		return "", nil, fmt.Errorf("chart timestamps are not a list: %v", jts)
	}

	jcl, err := jsonpath.Get("$.chart.result[0].indicators.quote[0].close", jobj)
	if err != nil {
		return "", nil, fmt.Errorf("cannot find closes in chart document: %w", err)
	}
	values, ok := jcl.([]any)
	if !ok {
		return "", nil, fmt.Errorf("chart closes are not a list: %v", jcl)
	}
	if len(values) != len(timestamps) {
		return "", nil, fmt.Errorf("chart has %d closes for %d timestamps", len(values), len(timestamps))
	}

	closes = &date.History[float64]{}
	for i, jt := range timestamps {
		ts, ok := jt.(float64)
		if !ok {
			return "", nil, fmt.Errorf("chart timestamp is not a number: %v", jt)
		}
		price, ok := values[i].(float64)
		if !ok {
			continue // null close, nothing traded that day
		}
		on := date.New(time.Unix(int64(ts), 0).UTC().Date())
		closes.Append(on, price)
	}
	return ticker, closes, nil
}

// first unwraps the single answer when jsonpath returns a list of one,
// because jsonpath is never clear about which of the two it returns.
func first(jval any) any {
	if jlist, ok := jval.([]any); ok && len(jlist) == 1 {
		return jlist[0]
	}
	return jval
}
