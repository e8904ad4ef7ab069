package test

import (
	"math/rand"
	"sync"
	"time"

	"github.com/polkiloo/courieragent/internal/domain/model"
)

const uidAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

var (
	rngMu sync.Mutex
	rng   = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// RandomDriverID returns an identity-provider style uid of 28 characters.
func RandomDriverID() string {
	buf := make([]byte, 28)
	rngMu.Lock()
	defer rngMu.Unlock()
	for i := range buf {
		buf[i] = uidAlphabet[rng.Intn(len(uidAlphabet))]
	}
	return string(buf)
}

// RandomOrderID returns a positive order id.
func RandomOrderID() int64 {
	rngMu.Lock()
	defer rngMu.Unlock()
	return rng.Int63n(1_000_000) + 1
}

// RandomPoint returns a fix somewhere around Ho Chi Minh City.
func RandomPoint(at time.Time) model.GeoPoint {
	rngMu.Lock()
	defer rngMu.Unlock()
	return model.GeoPoint{
		Latitude:   10.7 + rng.Float64()*0.2,
		Longitude:  106.6 + rng.Float64()*0.2,
		RecordedAt: at,
	}
}
