package model

import "errors"

var (
	ErrInvalidAnswers      = errors.New("invalid questionnaire answers")
	ErrRecommendationFault = errors.New("recommendation fault")
	ErrCheckoutCreation    = errors.New("checkout creation fault")
	ErrVerification        = errors.New("payment verification fault")
	ErrStorageCorruption   = errors.New("storage corruption")
	ErrAttemptInFlight     = errors.New("payment attempt already in flight")
)
