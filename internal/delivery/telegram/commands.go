package telegram

import (
	"errors"
	"strings"
)

const HelpText = `Commands:
/help - show this help
/status - last alert batch and failure streak
/run - run an alert batch now
/market <market_id> - show the snapshot alerts would see

Example:
/market fed-decision-in-march
`

var ErrInvalidArguments = errors.New("invalid arguments")

func ParseMarketID(args string) (string, error) {
	fields := strings.Fields(args)
	if len(fields) != 1 {
		return "", ErrInvalidArguments
	}
	return fields[0], nil
}
