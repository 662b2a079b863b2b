// Package services contains the business logic layer. Services depend on
// repositories through narrow interfaces so tests can substitute in-memory
// fakes, and controllers translate service errors into HTTP responses.
package services

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"time"
)

// ClientError is a business-rule violation that maps to a 4xx response.
type ClientError struct {
	Status  int
	Message string
}

func (e *ClientError) Error() string { return e.Message }

func errBadRequest(format string, args ...interface{}) error {
	return &ClientError{Status: 400, Message: fmt.Sprintf(format, args...)}
}

func errForbidden(format string, args ...interface{}) error {
	return &ClientError{Status: 403, Message: fmt.Sprintf(format, args...)}
}

func errNotFound(format string, args ...interface{}) error {
	return &ClientError{Status: 404, Message: fmt.Sprintf(format, args...)}
}

func errConflict(format string, args ...interface{}) error {
	return &ClientError{Status: 409, Message: fmt.Sprintf(format, args...)}
}

// round2 rounds a monetary amount to two decimal places.
func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// timestampSuffix returns the trailing digits of the current millisecond
// timestamp, the compact time component used in human-facing identifiers.
func timestampSuffix() string {
	ms := strconv.FormatInt(time.Now().UnixMilli(), 10)
	if len(ms) > 8 {
		return ms[8:]
	}
	return ms
}

// randomUpperHex returns n random uppercase hex characters.
func randomUpperHex(n int) string {
	buf := make([]byte, (n+1)/2)
	rand.Read(buf)
	s := hex.EncodeToString(buf)[:n]
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		c := s[i]
		if c >= 'a' && c <= 'f' {
			c -= 'a' - 'A'
		}
		out[i] = c
	}
	return string(out)
}

func newOrderNumber() string {
	return "ORD-" + timestampSuffix() + randomUpperHex(4)
}

func newInvoiceNumber() string {
	return "INV-" + timestampSuffix() + randomUpperHex(4)
}

func newTransactionID() string {
	return randomUpperHex(16)
}

func newGatewayTransactionID() string {
	return "GTW-" + randomUpperHex(12)
}
