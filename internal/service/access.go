package service

import (
	"github.com/taskhive/taskhive-server/internal/model"
)

// Stage is where a user sits in the progression pipeline. Exactly one stage
// applies to any user state.
type Stage string

const (
	StageRejected         Stage = "rejected"
	StageOrientation      Stage = "orientation"
	StageSubscription     Stage = "subscription"
	StageAwaitingApproval Stage = "awaiting_approval"
	StageFull             Stage = "full"
)

// Route names shared between the server-side gate and the client router.
const (
	RouteAuth          = "auth"
	RouteOrientation   = "orientation"
	RouteTasks         = "tasks"
	RouteProfile       = "profile"
	RouteSubscribe     = "subscribe"
	RouteWaiting       = "waiting"
	RouteHome          = "home"
	RouteWallet        = "wallet"
	RouteNotifications = "notifications"
	RouteAdmin         = "admin"
)

// Capabilities is what a user may currently see and do.
type Capabilities struct {
	Stage           Stage            `json:"stage"`
	Routes          []string         `json:"routes"`
	Categories      []model.Category `json:"categories"`
	DailyTasks      int              `json:"daily_tasks"`
	OrientationOnly bool             `json:"orientation_only"`
	CanSubscribe    bool             `json:"can_subscribe"`
	Admin           bool             `json:"admin"`
}

// AllowsRoute reports whether the capability set includes a route.
func (c Capabilities) AllowsRoute(route string) bool {
	for _, r := range c.Routes {
		if r == route {
			return true
		}
	}
	return false
}

// AccessInput is the full evaluator input, taken from a single user row.
type AccessInput struct {
	Orientation    model.OrientationStatus
	Tier           *model.Tier
	ApprovalStatus model.ApprovalStatus
	Role           model.Role
}

// EvaluateAccess derives the capability set for a user. It is a pure
// function: the same input always yields the same output, with no lookups
// and no side effects, so the server middleware and the client can share its
// verdicts.
//
// Decision order:
//  1. admins hold an explicit full-access capability (top tier, all
//     categories, admin routes) independent of the gates below
//  2. rejected users reach the auth/landing surface only
//  3. incomplete orientation routes to onboarding regardless of approval
//     status: registration defaults approval to pending, and the orientation
//     gate outranks the waiting room until the user has actually paid
//  4. orientation done but no tier: the subscription purchase flow only
//  5. tier present but approval pending (set back to pending by the payment
//     bridge): the waiting-for-approval view only
//  6. otherwise full access, task categories gated by the tier catalog
func EvaluateAccess(in AccessInput, catalog *TierCatalog) Capabilities {
	if in.Role == model.RoleAdmin {
		limits, _ := catalog.LimitsFor(catalog.Top())
		return Capabilities{
			Stage:      StageFull,
			Routes:     []string{RouteHome, RouteTasks, RouteWallet, RouteNotifications, RouteProfile, RouteAdmin},
			Categories: limits.Categories,
			DailyTasks: limits.DailyTasks,
			Admin:      true,
		}
	}

	if in.ApprovalStatus == model.ApprovalRejected {
		return Capabilities{
			Stage:  StageRejected,
			Routes: []string{RouteAuth},
		}
	}

	if in.Orientation.InOrientation() {
		return Capabilities{
			Stage:           StageOrientation,
			Routes:          []string{RouteOrientation, RouteTasks, RouteProfile, RouteSubscribe},
			Categories:      model.Categories,
			OrientationOnly: true,
			CanSubscribe:    true,
		}
	}

	if in.Tier == nil {
		return Capabilities{
			Stage:        StageSubscription,
			Routes:       []string{RouteSubscribe, RouteProfile},
			CanSubscribe: true,
		}
	}

	if in.ApprovalStatus == model.ApprovalPending {
		return Capabilities{
			Stage:  StageAwaitingApproval,
			Routes: []string{RouteWaiting, RouteProfile},
		}
	}

	limits, err := catalog.LimitsFor(*in.Tier)
	if err != nil {
		// An unknown stored tier strands the user at the subscription step
		// rather than silently granting the lowest tier's access.
		return Capabilities{
			Stage:        StageSubscription,
			Routes:       []string{RouteSubscribe, RouteProfile},
			CanSubscribe: true,
		}
	}

	return Capabilities{
		Stage:      StageFull,
		Routes:     []string{RouteHome, RouteTasks, RouteWallet, RouteNotifications, RouteProfile},
		Categories: limits.Categories,
		DailyTasks: limits.DailyTasks,
	}
}

// AccessInputFromUser builds the evaluator input from a user row.
func AccessInputFromUser(u *model.User) AccessInput {
	return AccessInput{
		Orientation:    u.Orientation(),
		Tier:           u.SubscriptionTier,
		ApprovalStatus: u.ApprovalStatus,
		Role:           u.Role,
	}
}
