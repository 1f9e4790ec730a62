package service

import "errors"

var (
	ErrPaymentDeclined     = errors.New("payment declined")
	ErrSessionNotReady     = errors.New("checkout session has unresolved validation errors")
	IllegalTransitionError = errors.New("illegal transition of checkout status")
)
