package schema

import (
	"errors"
)

var (
	ErrNotExist = errors.New("not_exist_record")
	ErrNotFound = errors.New("not_found")

	ErrKeyNotFound    = errors.New("key_not_found")
	ErrKeyDisabled    = errors.New("key_disabled")
	ErrIPNotAllowed   = errors.New("ip_not_allowed")
	ErrQuotaExceeded  = errors.New("quota_exceeded")
	ErrTierTooLow     = errors.New("tier_insufficient")
	ErrStoreNotReady  = errors.New("credential_store_unreachable")
	ErrNullPairAddr   = errors.New("null_pair_address")
	ErrUpstreamStatus = errors.New("upstream_bad_status")
)
