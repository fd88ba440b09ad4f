package model

import "strings"

const PlaceholderCover = "/images/placeholder-book.png"

// CoverURL joins the relative imageUrl stored with a book onto the image host.
func CoverURL(imageHost, imageURL, placeholder string) string {
	if strings.TrimSpace(imageURL) == "" {
		if placeholder == "" {
			return PlaceholderCover
		}
		return placeholder
	}
	if strings.HasPrefix(imageURL, "http://") || strings.HasPrefix(imageURL, "https://") {
		return imageURL
	}
	host := strings.TrimRight(imageHost, "/")
	if !strings.HasPrefix(imageURL, "/") {
		imageURL = "/" + imageURL
	}
	return host + imageURL
}
