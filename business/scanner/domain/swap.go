package domain

import (
	"math/big"

	"github.com/quantfi/flasharb/internal/apperror"
)

// BpsDenominator is the basis-point scale used across swap math.
const BpsDenominator = 10000

// FlashLoanFeeBps is the lender fee charged on the borrowed amount.
const FlashLoanFeeBps = 9

// AmountOut computes the constant-product swap output for an exact input,
// with the pool fee taken from the input side:
//
//	out = in*(10000-fee)*reserveOut / (reserveIn*10000 + in*(10000-fee))
//
// All math is integer, rounding down, matching on-chain execution.
func AmountOut(amountIn, reserveIn, reserveOut *big.Int, feeBps uint32) (*big.Int, error) {
	if amountIn == nil || amountIn.Sign() <= 0 {
		return nil, apperror.New(apperror.CodeInvalidBorrowAmount,
			apperror.WithContext("swap input must be positive"))
	}
	if reserveIn == nil || reserveOut == nil || reserveIn.Sign() <= 0 || reserveOut.Sign() <= 0 {
		return nil, apperror.New(apperror.CodeInvalidReserves)
	}
	if feeBps >= BpsDenominator {
		return nil, apperror.New(apperror.CodeInvalidReserves,
			apperror.WithContext("pool fee consumes the entire input"))
	}

	feeFactor := big.NewInt(int64(BpsDenominator - feeBps))
	amountInWithFee := new(big.Int).Mul(amountIn, feeFactor)

	numerator := new(big.Int).Mul(amountInWithFee, reserveOut)
	denominator := new(big.Int).Mul(reserveIn, big.NewInt(BpsDenominator))
	denominator.Add(denominator, amountInWithFee)

	return numerator.Div(numerator, denominator), nil
}

// FlashLoanFee returns the lender fee on a borrowed amount, rounding down.
func FlashLoanFee(amount *big.Int) *big.Int {
	fee := new(big.Int).Mul(amount, big.NewInt(FlashLoanFeeBps))
	return fee.Div(fee, big.NewInt(BpsDenominator))
}

// RepayAmount returns principal plus flash loan fee.
func RepayAmount(amount *big.Int) *big.Int {
	return new(big.Int).Add(amount, FlashLoanFee(amount))
}
