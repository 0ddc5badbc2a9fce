package application

import "crypto/md5"

// rolloutBucket maps a (flag name, user ID) pair onto [0,100). The bucket
// is the MD5 digest of the concatenated UTF-8 bytes interpreted as an
// unsigned big-endian integer, reduced mod 100 by byte folding. MD5 is
// used for stability, not security: the same pair must land in the same
// bucket on every run and on every instance evaluating the flag.
func rolloutBucket(name, userID string) int {
	sum := md5.Sum([]byte(name + userID))
	v := 0
	for _, b := range sum {
		v = (v*256 + int(b)) % 100
	}
	return v
}
