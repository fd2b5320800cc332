package models

import "time"

type Impact string

const (
	ImpactPositive Impact = "positive"
	ImpactNegative Impact = "negative"
	ImpactNeutral  Impact = "neutral"
)

// NewsImpactRecord is an illustrative, templated headline.
type NewsImpactRecord struct {
	Title      string    `json:"title"`
	Impact     Impact    `json:"impact"`
	Importance int       `json:"importance"`
	Date       time.Time `json:"date"`
}
