package domain

import (
	"math/big"
	"testing"

	"github.com/quantfi/flasharb/internal/apperror"
)

func TestAmountOut(t *testing.T) {
	tests := []struct {
		name       string
		amountIn   int64
		reserveIn  int64
		reserveOut int64
		feeBps     uint32
		want       int64
	}{
		{
			name:       "balanced pool with 30bps fee",
			amountIn:   1000,
			reserveIn:  100000,
			reserveOut: 100000,
			feeBps:     30,
			want:       987,
		},
		{
			name:       "balanced pool with zero fee",
			amountIn:   1000,
			reserveIn:  100000,
			reserveOut: 100000,
			feeBps:     0,
			want:       990,
		},
		{
			name:       "output reserve twice input reserve",
			amountIn:   1000,
			reserveIn:  100000,
			reserveOut: 200000,
			feeBps:     30,
			want:       1974,
		},
		{
			name:       "large trade moves the price",
			amountIn:   50000,
			reserveIn:  100000,
			reserveOut: 100000,
			feeBps:     30,
			want:       33266,
		},
		{
			name:       "tiny trade rounds down to zero",
			amountIn:   1,
			reserveIn:  100000000,
			reserveOut: 1,
			feeBps:     30,
			want:       0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AmountOut(
				big.NewInt(tt.amountIn),
				big.NewInt(tt.reserveIn),
				big.NewInt(tt.reserveOut),
				tt.feeBps,
			)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Int64() != tt.want {
				t.Errorf("AmountOut() = %d, want %d", got.Int64(), tt.want)
			}
		})
	}
}

// Sweeping input sizes from dust up to well past the input reserve: the
// output must never decrease as the input grows, and must always stay
// strictly below the output reserve.
func TestAmountOut_MonotonicAndBounded(t *testing.T) {
	pools := []struct {
		name       string
		reserveIn  int64
		reserveOut int64
		feeBps     uint32
	}{
		{"balanced", 1000000, 1000000, 30},
		{"deep out side", 1000000, 250000000, 30},
		{"shallow out side", 1000000, 1000, 100},
		{"zero fee", 1000000, 1000000, 0},
	}

	for _, p := range pools {
		t.Run(p.name, func(t *testing.T) {
			reserveIn := big.NewInt(p.reserveIn)
			reserveOut := big.NewInt(p.reserveOut)

			prev := big.NewInt(-1)
			// 1 up to 16x the input reserve, doubling each step
			for in := big.NewInt(1); in.Int64() <= 16*p.reserveIn; in = new(big.Int).Mul(in, big.NewInt(2)) {
				out, err := AmountOut(in, reserveIn, reserveOut, p.feeBps)
				if err != nil {
					t.Fatalf("AmountOut(%s) failed: %v", in, err)
				}
				if out.Cmp(reserveOut) >= 0 {
					t.Fatalf("AmountOut(%s) = %s, must stay below the output reserve %s", in, out, reserveOut)
				}
				if out.Cmp(prev) < 0 {
					t.Fatalf("AmountOut(%s) = %s dropped below the previous output %s", in, out, prev)
				}
				prev = out
			}
		})
	}
}

func TestAmountOut_Errors(t *testing.T) {
	tests := []struct {
		name       string
		amountIn   *big.Int
		reserveIn  *big.Int
		reserveOut *big.Int
		feeBps     uint32
		wantCode   apperror.Code
	}{
		{
			name:       "zero input",
			amountIn:   big.NewInt(0),
			reserveIn:  big.NewInt(100000),
			reserveOut: big.NewInt(100000),
			feeBps:     30,
			wantCode:   apperror.CodeInvalidBorrowAmount,
		},
		{
			name:       "nil input",
			amountIn:   nil,
			reserveIn:  big.NewInt(100000),
			reserveOut: big.NewInt(100000),
			feeBps:     30,
			wantCode:   apperror.CodeInvalidBorrowAmount,
		},
		{
			name:       "empty input reserve",
			amountIn:   big.NewInt(1000),
			reserveIn:  big.NewInt(0),
			reserveOut: big.NewInt(100000),
			feeBps:     30,
			wantCode:   apperror.CodeInvalidReserves,
		},
		{
			name:       "negative output reserve",
			amountIn:   big.NewInt(1000),
			reserveIn:  big.NewInt(100000),
			reserveOut: big.NewInt(-1),
			feeBps:     30,
			wantCode:   apperror.CodeInvalidReserves,
		},
		{
			name:       "fee consumes full input",
			amountIn:   big.NewInt(1000),
			reserveIn:  big.NewInt(100000),
			reserveOut: big.NewInt(100000),
			feeBps:     10000,
			wantCode:   apperror.CodeInvalidReserves,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := AmountOut(tt.amountIn, tt.reserveIn, tt.reserveOut, tt.feeBps)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !apperror.HasCode(err, tt.wantCode) {
				t.Errorf("expected code %s, got %v", tt.wantCode, err)
			}
		})
	}
}

func TestFlashLoanFee(t *testing.T) {
	tests := []struct {
		name   string
		amount int64
		want   int64
	}{
		{"round amount", 10000, 9},
		{"fee rounds down", 1000, 0},
		{"large amount", 1000000, 900},
		{"just above fee threshold", 1112, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FlashLoanFee(big.NewInt(tt.amount))
			if got.Int64() != tt.want {
				t.Errorf("FlashLoanFee(%d) = %d, want %d", tt.amount, got.Int64(), tt.want)
			}
		})
	}
}

func TestRepayAmount(t *testing.T) {
	got := RepayAmount(big.NewInt(10000))
	if got.Int64() != 10009 {
		t.Errorf("RepayAmount(10000) = %d, want 10009", got.Int64())
	}
}

func TestMidPrice(t *testing.T) {
	pool, state := testPool("v1", "P1", 1000000, 92000)

	price := MidPrice(pool, state)
	want := "0.092"
	if !price.Equal(decimalFromString(t, want)) {
		t.Errorf("MidPrice() = %s, want %s", price, want)
	}
}

func TestMidPrice_EmptyReserves(t *testing.T) {
	pool, state := testPool("v1", "P1", 0, 92000)

	if !MidPrice(pool, state).IsZero() {
		t.Error("expected zero price for empty reserves")
	}
}

func TestNormalizeAddressPair(t *testing.T) {
	if got := NormalizeAddressPair("CBBB", "CAAA"); got != "CAAA:CBBB" {
		t.Errorf("NormalizeAddressPair() = %s, want CAAA:CBBB", got)
	}
	if got := NormalizeAddressPair("CAAA", "CBBB"); got != "CAAA:CBBB" {
		t.Errorf("NormalizeAddressPair() = %s, want CAAA:CBBB", got)
	}
}
