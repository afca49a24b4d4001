package service

import "time"

// unixNow is the default clock for services.
func unixNow() int64 { return time.Now().Unix() }
