package bloomfilter

import "errors"

var errShortFilter = errors.New("bloomfilter: encoded data too short")
