package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// CodeReview is a Code-Review vote a user can cast from the command line.
type CodeReview int

const (
	CodeReviewMinusOne CodeReview = -1
	CodeReviewZero     CodeReview = 0
	CodeReviewPlusOne  CodeReview = 1
	CodeReviewPlusTwo  CodeReview = 2
)

// CodeReviewValues lists the accepted votes in their wire form.
var CodeReviewValues = []string{"+1", "+2", "-1", "0"}

// ParseCodeReview parses a wire value such as "+2" or "-1". A bare "1" or "2" is accepted.
func ParseCodeReview(s string) (CodeReview, error) {
	switch strings.TrimSpace(s) {
	case "-1":
		return CodeReviewMinusOne, nil
	case "0", "+0", "-0":
		return CodeReviewZero, nil
	case "+1", "1":
		return CodeReviewPlusOne, nil
	case "+2", "2":
		return CodeReviewPlusTwo, nil
	}
	return CodeReviewZero, fmt.Errorf("invalid Code-Review value %q (want one of %s)", s, strings.Join(CodeReviewValues, ", "))
}

// String returns the wire form: signed for non-zero votes, "0" otherwise.
func (c CodeReview) String() string {
	if c == CodeReviewZero {
		return "0"
	}
	return fmt.Sprintf("%+d", int(c))
}

// Int returns the numeric vote.
func (c CodeReview) Int() int { return int(c) }

func (c CodeReview) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *CodeReview) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		var n int
		if err2 := json.Unmarshal(data, &n); err2 != nil {
			return err
		}
		s = fmt.Sprintf("%d", n)
	}
	v, err := ParseCodeReview(s)
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Set implements pflag.Value so a CodeReview can be bound to a flag.
func (c *CodeReview) Set(s string) error {
	v, err := ParseCodeReview(s)
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Type implements pflag.Value.
func (c *CodeReview) Type() string { return "vote" }
