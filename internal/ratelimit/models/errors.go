package models

import dErrors "rmfaudit/pkg/domain-errors"

var ErrRateLimited = dErrors.NewReason(dErrors.CodeRateLimited, "rate_limit_exceeded", "too many requests, retry later")
