package services

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"bookmark_manager/database"
	"bookmark_manager/models"
)

var faviconProbes = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "favicon_probes_total",
		Help: "Favicon probe outcomes",
	},
	[]string{"result"},
)

const faviconAccept = "text/xml,application/xml,application/xhtml+xml,text/html;q=0.9,text/plain;q=0.8,image/png,*/*;q=0.5"

// NewFaviconClient returns the bounded HTTP client the probe runs with.
func NewFaviconClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// CheckFavicon probes <scheme>://<host>/favicon.ico for the bookmark's site
// and records the outcome on the bookmark row. Every failure mode (malformed
// URL, timeout, non-2xx) is absorbed into has_favicon=false; the caller's
// submission has already committed and must not be disturbed.
func CheckFavicon(client *http.Client, bookmark *models.Bookmark) {
	hasFavicon := false
	if faviconURL := bookmark.FaviconURL(true); faviconURL != "" {
		if resp, err := probeFavicon(client, faviconURL); err == nil {
			resp.Body.Close()
			hasFavicon = resp.StatusCode >= 200 && resp.StatusCode < 300
		}
	}

	if hasFavicon {
		faviconProbes.WithLabelValues("hit").Inc()
	} else {
		faviconProbes.WithLabelValues("miss").Inc()
	}

	bookmark.HasFavicon = hasFavicon
	bookmark.FaviconCheckedAt = time.Now()
	err := database.DB.Model(bookmark).Updates(map[string]interface{}{
		"has_favicon":        bookmark.HasFavicon,
		"favicon_checked_at": bookmark.FaviconCheckedAt,
	}).Error
	if err != nil {
		zap.S().Warnf("failed to record favicon check for bookmark %d: %v", bookmark.ID, err)
	}
}

func probeFavicon(client *http.Client, faviconURL string) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodGet, faviconURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", faviconAccept)
	req.Header.Set("Accept-Language", "en-us,en;q=0.5")
	req.Header.Set("Connection", "close")
	return client.Do(req)
}

// VerifyURLReachable is the VerifyExists validation: a bounded GET of the
// URL itself, rejecting submissions whose target can't be fetched.
func VerifyURLReachable(client *http.Client, rawURL string) error {
	resp, err := client.Get(rawURL)
	if err != nil {
		return ErrURLUnreachable
	}
	resp.Body.Close()
	if resp.StatusCode >= 400 {
		return ErrURLUnreachable
	}
	return nil
}
