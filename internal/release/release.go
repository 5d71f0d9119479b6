// Package release checks whether a newer converter release has been
// published. The check is best effort: failures are logged at debug level
// and never affect the conversion.
package release

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const (
	defaultBaseURL = "https://api.github.com"
	latestPath     = "/repos/cbinyu/bidsphysio/releases/latest"
	requestTimeout = 3 * time.Second
)

// latestRelease is the slice of the GitHub release payload we read.
type latestRelease struct {
	TagName string `json:"tag_name"`
	HTMLURL string `json:"html_url"`
}

// Option configures a Checker.
type Option func(*Checker)

// WithBaseURL points the checker at a different API host.
func WithBaseURL(u string) Option {
	return func(c *Checker) { c.client.SetBaseURL(u) }
}

// Checker queries the release feed for a version newer than the running one.
type Checker struct {
	client *resty.Client
	logger *zap.Logger
}

// NewChecker creates a Checker. A nil logger disables logging.
func NewChecker(logger *zap.Logger, opts ...Option) *Checker {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Checker{
		client: resty.New().
			SetBaseURL(defaultBaseURL).
			SetTimeout(requestTimeout).
			SetHeader("Accept", "application/vnd.github+json"),
		logger: logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Notify logs a warning when the release feed advertises a version newer
// than current. Network and HTTP failures are logged at debug level and
// otherwise swallowed.
func (c *Checker) Notify(ctx context.Context, current string) {
	var rel latestRelease
	resp, err := c.client.R().SetContext(ctx).SetResult(&rel).Get(latestPath)
	if err != nil {
		c.logger.Debug("release check skipped", zap.Error(err))
		return
	}
	if resp.IsError() {
		c.logger.Debug("release check skipped", zap.Int("status", resp.StatusCode()))
		return
	}

	latest := strings.TrimPrefix(rel.TagName, "v")
	if latest == "" || !newerVersion(latest, current) {
		return
	}
	c.logger.Warn("a newer release is available",
		zap.String("current", current),
		zap.String("latest", latest),
		zap.String("url", rel.HTMLURL))
}

// newerVersion reports whether a is a strictly newer dotted version than b.
// Missing or non-numeric fields compare as zero.
func newerVersion(a, b string) bool {
	as, bs := strings.Split(a, "."), strings.Split(b, ".")
	for i := 0; i < len(as) || i < len(bs); i++ {
		av, bv := fieldNum(as, i), fieldNum(bs, i)
		if av != bv {
			return av > bv
		}
	}
	return false
}

func fieldNum(fields []string, i int) int {
	if i >= len(fields) {
		return 0
	}
	n, _ := strconv.Atoi(fields[i])
	return n
}
