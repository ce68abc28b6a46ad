/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package board

import "errors"

var (
	ErrUnknownAction      = errors.New("unknown action")
	ErrMalformedCommand   = errors.New("malformed command")
	ErrInvalidCalibration = errors.New("invalid calibration")
)
