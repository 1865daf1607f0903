package model

import (
	"fmt"
	"strings"
)

type TimeHorizon string

const (
	HorizonShort  TimeHorizon = "Short"
	HorizonMedium TimeHorizon = "Medium"
	HorizonLong   TimeHorizon = "Long"
)

type RiskTolerance string

const (
	RiskLow    RiskTolerance = "low"
	RiskMedium RiskTolerance = "medium"
	RiskHigh   RiskTolerance = "high"
)

type ExperienceLevel string

const (
	ExperienceBeginner     ExperienceLevel = "Beginner"
	ExperienceIntermediate ExperienceLevel = "Intermediate"
	ExperienceAdvanced     ExperienceLevel = "Advanced"
)

// QuestionnaireAnswers is the investor profile collected by the wizard form.
type QuestionnaireAnswers struct {
	Age               string          `json:"age" yaml:"age"`
	InvestmentGoal    string          `json:"investmentGoal" yaml:"investment_goal"`
	TimeHorizon       TimeHorizon     `json:"timeHorizon" yaml:"time_horizon"`
	RiskTolerance     RiskTolerance   `json:"riskTolerance" yaml:"risk_tolerance"`
	ExperienceLevel   ExperienceLevel `json:"experienceLevel" yaml:"experience_level"`
	InvestmentAmount  float64         `json:"investmentAmount" yaml:"investment_amount"`
	VolatilityComfort string          `json:"volatilityComfort" yaml:"volatility_comfort"`
	MarketExpectation string          `json:"marketExpectation" yaml:"market_expectation"`
}

// Merge returns a copy of a with every non-zero field of partial applied.
func (a QuestionnaireAnswers) Merge(partial QuestionnaireAnswers) QuestionnaireAnswers {
	if partial.Age != "" {
		a.Age = partial.Age
	}
	if partial.InvestmentGoal != "" {
		a.InvestmentGoal = partial.InvestmentGoal
	}
	if partial.TimeHorizon != "" {
		a.TimeHorizon = partial.TimeHorizon
	}
	if partial.RiskTolerance != "" {
		a.RiskTolerance = partial.RiskTolerance
	}
	if partial.ExperienceLevel != "" {
		a.ExperienceLevel = partial.ExperienceLevel
	}
	if partial.InvestmentAmount != 0 {
		a.InvestmentAmount = partial.InvestmentAmount
	}
	if partial.VolatilityComfort != "" {
		a.VolatilityComfort = partial.VolatilityComfort
	}
	if partial.MarketExpectation != "" {
		a.MarketExpectation = partial.MarketExpectation
	}
	return a
}

// Validate checks that a submitted questionnaire is complete.
func (a QuestionnaireAnswers) Validate() error {
	var problems []string
	if a.Age == "" {
		problems = append(problems, "age is required")
	}
	if a.InvestmentGoal == "" {
		problems = append(problems, "investment goal is required")
	}
	switch a.TimeHorizon {
	case HorizonShort, HorizonMedium, HorizonLong:
	default:
		problems = append(problems, fmt.Sprintf("time horizon %q is invalid", a.TimeHorizon))
	}
	switch a.RiskTolerance {
	case RiskLow, RiskMedium, RiskHigh:
	default:
		problems = append(problems, fmt.Sprintf("risk tolerance %q is invalid", a.RiskTolerance))
	}
	switch a.ExperienceLevel {
	case ExperienceBeginner, ExperienceIntermediate, ExperienceAdvanced:
	default:
		problems = append(problems, fmt.Sprintf("experience level %q is invalid", a.ExperienceLevel))
	}
	if a.InvestmentAmount <= 0 {
		problems = append(problems, "investment amount must be positive")
	}
	if a.VolatilityComfort == "" {
		problems = append(problems, "volatility comfort is required")
	}
	if a.MarketExpectation == "" {
		problems = append(problems, "market expectation is required")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidAnswers, strings.Join(problems, "; "))
	}
	return nil
}
