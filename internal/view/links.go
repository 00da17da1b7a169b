package view

import (
	"net/url"
	"strings"
)

// RouteLinks points cards at the service's own redirect and retry routes
type RouteLinks struct {
	Prefix string // e.g. "/api/v1"
}

func (l RouteLinks) Play(taskID string) string {
	return l.job(taskID, "play")
}

func (l RouteLinks) Download(taskID string) string {
	return l.job(taskID, "download")
}

func (l RouteLinks) Retry(view string) string {
	return l.base() + "/views/" + url.PathEscape(view) + "/retry"
}

func (l RouteLinks) job(taskID, action string) string {
	return l.base() + "/jobs/" + url.PathEscape(taskID) + "/" + action
}

func (l RouteLinks) base() string {
	return strings.TrimRight(l.Prefix, "/")
}
