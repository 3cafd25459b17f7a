package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCacheKeyBuilders(t *testing.T) {
	assert.Equal(t, "wallet:user:7", WalletCacheKey(7))
	assert.Equal(t, "txhistory:user:7", TxHistoryCacheKey(7))
	assert.Equal(t, "admin:users:page=2:size=20", AdminUsersCacheKey(2, 20))
}
