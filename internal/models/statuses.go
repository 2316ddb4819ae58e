package models

type ApplicantStatus string
type UserRole string
type UserStatus string
type UploadUsage string

const (
	ApplicantStatusNew      ApplicantStatus = "new"
	ApplicantStatusApproved ApplicantStatus = "approved"
	ApplicantStatusRejected ApplicantStatus = "rejected"

	UserRoleAdmin     UserRole = "admin"
	UserRoleModerator UserRole = "moderator"

	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"

	UploadUsageResume    UploadUsage = "resume"
	UploadUsagePhoto     UploadUsage = "photo"
	UploadUsageThumbnail UploadUsage = "thumbnail"
)

func (s ApplicantStatus) IsValid() bool {
	switch s {
	case ApplicantStatusNew, ApplicantStatusApproved, ApplicantStatusRejected:
		return true
	}
	return false
}

// Transition - действие администратора над заявкой
type Transition string

const (
	TransitionApprove    Transition = "approve"
	TransitionReject     Transition = "reject"
	TransitionReconsider Transition = "reconsider"
)

type transitionRule struct {
	from []ApplicantStatus
	to   ApplicantStatus
}

// Единственная таблица разрешенных переходов.
// reconsider допускается только из rejected и ведет в approved.
var transitionRules = map[Transition]transitionRule{
	TransitionApprove: {
		from: []ApplicantStatus{ApplicantStatusNew, ApplicantStatusRejected},
		to:   ApplicantStatusApproved,
	},
	TransitionReject: {
		from: []ApplicantStatus{ApplicantStatusNew, ApplicantStatusApproved},
		to:   ApplicantStatusRejected,
	},
	TransitionReconsider: {
		from: []ApplicantStatus{ApplicantStatusRejected},
		to:   ApplicantStatusApproved,
	},
}

// CanTransition проверяет, разрешен ли переход из статуса from
func CanTransition(from ApplicantStatus, t Transition) bool {
	rule, ok := transitionRules[t]
	if !ok {
		return false
	}
	for _, s := range rule.from {
		if s == from {
			return true
		}
	}
	return false
}

// AllowedFrom - исходные статусы перехода (для условного UPDATE)
func AllowedFrom(t Transition) []ApplicantStatus {
	rule := transitionRules[t]
	out := make([]ApplicantStatus, len(rule.from))
	copy(out, rule.from)
	return out
}

// TargetStatus - статус после перехода
func TargetStatus(t Transition) ApplicantStatus {
	return transitionRules[t].to
}
