package binance

import "testing"

func TestSign(t *testing.T) {
	// Known vector from the exchange's API documentation.
	secret := "NhqPtmdSJYdKjVHjA7PZj4Mge3R5YNiP1e3UZjInClVN65XAbvqqM6A7H5fATj0j"
	query := "symbol=LTCBTC&side=BUY&type=LIMIT&timeInForce=GTC&quantity=1&price=0.1&recvWindow=5000&timestamp=1499827319559"
	want := "c8db56825ae71d6d79447849e617115f4a920fa2acdcab2b053c4b2838bd6b71"

	if got := Sign(secret, query); got != want {
		t.Errorf("Sign() = %s, want %s", got, want)
	}
}

func TestSignDiffersPerSecret(t *testing.T) {
	query := "timestamp=1499827319559"
	if Sign("secret-a", query) == Sign("secret-b", query) {
		t.Error("Expected different signatures for different secrets")
	}
}
