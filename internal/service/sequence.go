package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// generateOrderNo builds an order number: EK + timestamp + 6 random digits.
func generateOrderNo() string {
	return "EK" + time.Now().Format("20060102150405") + randomDigits(6)
}

// generateSessionNo builds a checkout session number.
func generateSessionNo() string {
	return "EKS" + time.Now().Format("20060102150405") + randomDigits(6)
}

func randomDigits(n int) string {
	max := big.NewInt(10)
	digits := make([]byte, n)
	for i := range digits {
		v, err := rand.Int(rand.Reader, max)
		if err != nil {
			digits[i] = '0'
			continue
		}
		digits[i] = byte('0' + v.Int64())
	}
	return string(digits)
}

// errMsg renders an error for sub-order failure reasons without panicking
// on nil.
func errMsg(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("%v", err)
}
