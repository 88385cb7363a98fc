/* models.go
 * This file contain the structs returned to api consumers
 * Authors: Gamers Bot contributors
 */

package api

import (
	"time"

	"gamers-bot/api/logic"
	"gamers-bot/api/shared"
)

// ContestView is everything needed to render a contest and its primary action
type ContestView struct {
	Contest     shared.Contest
	Application shared.MyApplication
	LoggedIn    bool
	Action      logic.Action
}

// ApplicationSession is an open application for one user and contest. It owns the point gate
type ApplicationSession struct {
	UserID    string
	ContestID int64
	Contest   shared.Contest
	Gate      *logic.PointGate
	OpenedAt  time.Time
}

// ValorantStatus is the linked rank account with its refresh availability
type ValorantStatus struct {
	Info        shared.ValorantInfo
	CanRefresh  bool
	NextRefresh time.Time
}

type sessionKey struct {
	userID    string
	contestID int64
}
