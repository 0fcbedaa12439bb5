package webprobe

import (
	"regexp"
	"strconv"
	"strings"
)

var copyrightRe = regexp.MustCompile(`(?:©|&copy;|&#169;|copyright)\s*(?:(?:19|20)\d{2}\s*(?:-|–|&ndash;)\s*)?((?:19|20)\d{2})`)

// copyrightYear returns the latest plausible copyright year on the page.
func copyrightYear(page string, currentYear int) int {
	best := 0
	for _, m := range copyrightRe.FindAllStringSubmatch(page, -1) {
		y, err := strconv.Atoi(m[1])
		if err != nil || y > currentYear {
			continue
		}
		best = max(best, y)
	}
	return best
}

var serviceKeywords = []struct {
	service string
	needles []string
}{
	{"repair", []string{"repair"}},
	{"installation", []string{"installation", "install "}},
	{"maintenance", []string{"maintenance", "tune-up", "tune up"}},
	{"emergency service", []string{"emergency", "24/7", "24 hour"}},
	{"inspection", []string{"inspection"}},
	{"replacement", []string{"replacement"}},
	{"financing", []string{"financing"}},
	{"free estimates", []string{"free estimate", "free quote"}},
	{"commercial", []string{"commercial"}},
	{"residential", []string{"residential"}},
}

// services lists the services the page advertises, in a fixed order.
func services(page string) []string {
	var out []string
	for _, k := range serviceKeywords {
		for _, n := range k.needles {
			if strings.Contains(page, n) {
				out = append(out, k.service)
				break
			}
		}
	}
	return out
}

var (
	legacyMarkers = []string{"<font", "<marquee", "<frameset", ".swf", "<blink", "bgcolor="}
	modernMarkers = []string{
		"_next/static", "__next_data__", "data-reactroot", "data-v-", "tailwind",
		"static.squarespace", "wixstatic", "webflow", "cdn.shopify", "wp-block", "gatsby",
	}
)

// classify grades a page as modern, dated or legacy.
func classify(page string, tlsValid bool, updatedYear, currentYear int) string {
	for _, m := range legacyMarkers {
		if strings.Contains(page, m) {
			return Legacy
		}
	}
	if updatedYear > 0 && updatedYear < currentYear-8 {
		return Legacy
	}

	score := 0
	if strings.Contains(page, `name="viewport"`) || strings.Contains(page, `name=viewport`) {
		score++
	}
	for _, m := range modernMarkers {
		if strings.Contains(page, m) {
			score++
			break
		}
	}
	if tlsValid {
		score++
	}
	if updatedYear >= currentYear-2 {
		score++
	}

	if score >= 3 {
		return Modern
	}
	return Dated
}
