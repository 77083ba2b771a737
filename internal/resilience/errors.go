package resilience

import (
	"errors"
	"net"
	"net/textproto"
	"strings"
	"syscall"
)

// Retryable reports whether a download error is worth another attempt.
// NOAA's FTP mirrors and the MarineRegions WFS both shed load under
// pressure, so transient server replies and flaky network conditions
// retry while everything else fails fast.
func Retryable(err error) bool {
	if err == nil {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	// go-ftp surfaces server replies as textproto errors.
	var ftpErr *textproto.Error
	if errors.As(err, &ftpErr) {
		return retryableFTPCode(ftpErr.Code)
	}

	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) ||
		errors.Is(err, syscall.EPIPE) {
		return true
	}

	// Wrapped transport errors from net/http lose their type; fall back
	// to the messages the stdlib actually emits.
	msg := strings.ToLower(err.Error())
	for _, p := range []string{
		"connection reset by peer",
		"no such host",
		"tls handshake timeout",
		"i/o timeout",
		"server closed idle connection",
	} {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

// retryableFTPCode reports whether an FTP reply code is a transient
// condition. 4xx replies mean "try again later" in the protocol; 421 in
// particular is how ftp.nodc.noaa.gov signals its connection cap.
func retryableFTPCode(code int) bool {
	return code >= 400 && code < 500
}
