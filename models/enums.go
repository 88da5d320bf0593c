package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownValue is returned when a value does not belong to a closed set.
var ErrUnknownValue = errors.New("unknown value")

// WorkItemStatus is the lifecycle state of a work item.
type WorkItemStatus string

const (
	StatusPending    WorkItemStatus = "in_attesa"
	StatusInProgress WorkItemStatus = "in_lavorazione"
	StatusInReview   WorkItemStatus = "in_revisione"
	StatusSuspended  WorkItemStatus = "sospesa"
	StatusCompleted  WorkItemStatus = "completata"
	StatusCancelled  WorkItemStatus = "annullata"
)

var workItemStatuses = []WorkItemStatus{
	StatusPending, StatusInProgress, StatusInReview, StatusSuspended, StatusCompleted, StatusCancelled,
}

// Legacy free-text values written before the set was closed.
var workItemStatusAliases = map[string]WorkItemStatus{
	"pending":     StatusPending,
	"in-progress": StatusInProgress,
	"in_progress": StatusInProgress,
	"in progress": StatusInProgress,
	"review":      StatusInReview,
	"suspended":   StatusSuspended,
	"completed":   StatusCompleted,
	"done":        StatusCompleted,
	"cancelled":   StatusCancelled,
	"canceled":    StatusCancelled,
}

func WorkItemStatuses() []WorkItemStatus {
	return append([]WorkItemStatus(nil), workItemStatuses...)
}

func ParseWorkItemStatus(raw string) (WorkItemStatus, error) {
	return parseEnum(raw, workItemStatuses, workItemStatusAliases)
}

func (s WorkItemStatus) Valid() bool {
	_, ok := matchEnum(string(s), workItemStatuses)
	return ok
}

// Priority orders work items for the assignee.
type Priority string

const (
	PriorityLow    Priority = "bassa"
	PriorityMedium Priority = "media"
	PriorityHigh   Priority = "alta"
	PriorityUrgent Priority = "urgente"
)

var priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

var priorityAliases = map[string]Priority{
	"low":    PriorityLow,
	"medium": PriorityMedium,
	"normal": PriorityMedium,
	"high":   PriorityHigh,
	"urgent": PriorityUrgent,
}

func Priorities() []Priority {
	return append([]Priority(nil), priorities...)
}

func ParsePriority(raw string) (Priority, error) {
	return parseEnum(raw, priorities, priorityAliases)
}

func (p Priority) Valid() bool {
	_, ok := matchEnum(string(p), priorities)
	return ok
}

// ResponseType tells the reviewer how a checklist question is answered.
type ResponseType string

const (
	ResponseCompliance ResponseType = "Conforme/Non Conforme"
	ResponseYesNo      ResponseType = "Si/No"
	ResponseFreeText   ResponseType = "Testo libero"
	ResponseNumeric    ResponseType = "Numerico"
	ResponseDate       ResponseType = "Data"
)

var responseTypes = []ResponseType{
	ResponseCompliance, ResponseYesNo, ResponseFreeText, ResponseNumeric, ResponseDate,
}

var responseTypeAliases = map[string]ResponseType{
	"conforme":   ResponseCompliance,
	"compliance": ResponseCompliance,
	"sì/no":      ResponseYesNo,
	"si_no":      ResponseYesNo,
	"yes/no":     ResponseYesNo,
	"testo":      ResponseFreeText,
	"text":       ResponseFreeText,
	"numero":     ResponseNumeric,
	"number":     ResponseNumeric,
	"date":       ResponseDate,
}

func ResponseTypes() []ResponseType {
	return append([]ResponseType(nil), responseTypes...)
}

func ParseResponseType(raw string) (ResponseType, error) {
	return parseEnum(raw, responseTypes, responseTypeAliases)
}

func (r ResponseType) Valid() bool {
	_, ok := matchEnum(string(r), responseTypes)
	return ok
}

func parseEnum[T ~string](raw string, legal []T, aliases map[string]T) (T, error) {
	if v, ok := matchEnum(raw, legal); ok {
		return v, nil
	}
	if v, ok := aliases[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return v, nil
	}
	var zero T
	return zero, fmt.Errorf("%w: %q", ErrUnknownValue, raw)
}

func matchEnum[T ~string](raw string, legal []T) (T, bool) {
	raw = strings.TrimSpace(raw)
	for _, v := range legal {
		if strings.EqualFold(raw, string(v)) {
			return v, true
		}
	}
	var zero T
	return zero, false
}
