package automation

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	common_models "go-erp/internal/common/models"
	"go-erp/internal/features/notification"

	"github.com/d5/tengo/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type AutomationService interface {
	CreateRule(ctx context.Context, rule *AutomationRule) error
	ListRules(ctx context.Context) ([]AutomationRule, error)
	UpdateRule(ctx context.Context, id string, rule *AutomationRule) error
	DeleteRule(ctx context.Context, id string) error

	// Dispatch runs all active rules for the trigger against the record and
	// returns the merged field changes the caller should persist. Rule
	// failures are logged and skipped; automation never blocks the
	// triggering operation.
	Dispatch(ctx context.Context, trigger string, record map[string]interface{}) map[string]interface{}
}

type AutomationServiceImpl struct {
	Repo                AutomationRepository
	NotificationService notification.NotificationService
	Logger              *zap.Logger
}

func NewAutomationService(repo AutomationRepository, notificationService notification.NotificationService, logger *zap.Logger) AutomationService {
	return &AutomationServiceImpl{
		Repo:                repo,
		NotificationService: notificationService,
		Logger:              logger,
	}
}

func (s *AutomationServiceImpl) CreateRule(ctx context.Context, rule *AutomationRule) error {
	if rule.ID.IsZero() {
		rule.ID = primitive.NewObjectID()
	}
	rule.CreatedAt = time.Now()
	rule.UpdatedAt = time.Now()
	return s.Repo.Create(ctx, rule)
}

func (s *AutomationServiceImpl) ListRules(ctx context.Context) ([]AutomationRule, error) {
	return s.Repo.List(ctx)
}

func (s *AutomationServiceImpl) UpdateRule(ctx context.Context, id string, rule *AutomationRule) error {
	return s.Repo.Update(ctx, id, rule)
}

func (s *AutomationServiceImpl) DeleteRule(ctx context.Context, id string) error {
	return s.Repo.Delete(ctx, id)
}

func (s *AutomationServiceImpl) Dispatch(ctx context.Context, trigger string, record map[string]interface{}) map[string]interface{} {
	rules, err := s.Repo.FindActiveByTrigger(ctx, trigger)
	if err != nil {
		s.Logger.Warn("failed to load automation rules",
			zap.String("trigger", trigger),
			zap.Error(err))
		return nil
	}

	changes := make(map[string]interface{})
	for _, rule := range rules {
		if !s.matches(rule.Conditions, record) {
			continue
		}
		for _, action := range rule.Actions {
			if err := s.executeAction(ctx, action, record, changes); err != nil {
				s.Logger.Warn("automation action failed",
					zap.String("rule", rule.Name),
					zap.String("action", string(action.Type)),
					zap.Error(err))
			}
		}
	}

	if len(changes) == 0 {
		return nil
	}
	return changes
}

func (s *AutomationServiceImpl) matches(conditions []RuleCondition, record map[string]interface{}) bool {
	for _, cond := range conditions {
		val, exists := record[cond.Field]
		if !exists {
			return false
		}

		strVal := fmt.Sprintf("%v", val)
		strCond := fmt.Sprintf("%v", cond.Value)

		switch cond.Operator {
		case OperatorEquals:
			if strVal != strCond {
				return false
			}
		case OperatorNotEquals:
			if strVal == strCond {
				return false
			}
		case OperatorContains:
			if !strings.Contains(strVal, strCond) {
				return false
			}
		case OperatorGreaterThan:
			if !compareNumeric(strVal, strCond, func(a, b float64) bool { return a > b }) {
				return false
			}
		case OperatorLessThan:
			if !compareNumeric(strVal, strCond, func(a, b float64) bool { return a < b }) {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// compareNumeric applies cmp when both values parse as numbers, falling back
// to a lexicographic comparison otherwise.
func compareNumeric(a, b string, cmp func(a, b float64) bool) bool {
	fa, errA := strconv.ParseFloat(a, 64)
	fb, errB := strconv.ParseFloat(b, 64)
	if errA == nil && errB == nil {
		return cmp(fa, fb)
	}
	if cmp(1, 0) {
		return a > b
	}
	return a < b
}

func (s *AutomationServiceImpl) executeAction(ctx context.Context, action RuleAction, record map[string]interface{}, changes map[string]interface{}) error {
	switch action.Type {
	case ActionRunScript:
		return s.executeRunScript(action.Config, record, changes)
	case ActionSendNotification:
		return s.executeSendNotification(ctx, action.Config, record)
	}
	return fmt.Errorf("unknown action type: %s", action.Type)
}

// executeRunScript evaluates a tengo script with the record exposed as a
// global. Scripts report field updates by writing to the `changes` map.
func (s *AutomationServiceImpl) executeRunScript(config map[string]interface{}, record map[string]interface{}, changes map[string]interface{}) error {
	scriptContent, _ := config["script"].(string)
	if scriptContent == "" {
		return fmt.Errorf("script content is required")
	}

	script := tengo.NewScript([]byte(scriptContent))
	script.Add("record", record)
	script.Add("changes", map[string]interface{}{})

	compiled, err := script.Compile()
	if err != nil {
		return fmt.Errorf("failed to compile script: %w", err)
	}
	if err := compiled.Run(); err != nil {
		return fmt.Errorf("failed to run script: %w", err)
	}

	scriptChanges := compiled.Get("changes").Map()
	for k, v := range scriptChanges {
		changes[k] = v
	}
	return nil
}

func (s *AutomationServiceImpl) executeSendNotification(ctx context.Context, config map[string]interface{}, record map[string]interface{}) error {
	title, _ := config["title"].(string)
	message, _ := config["message"].(string)
	if title == "" {
		return fmt.Errorf("notification title is required")
	}

	title = replacePlaceholders(title, record)
	message = replacePlaceholders(message, record)

	if role, ok := config["role"].(string); ok && role != "" {
		return s.NotificationService.NotifyRole(ctx, common_models.Role(role), title, message, notification.NotificationTypeInfo, "")
	}
	if userID, ok := config["user_id"].(string); ok && userID != "" {
		return s.NotificationService.Notify(ctx, userID, title, message, notification.NotificationTypeInfo, "")
	}
	return fmt.Errorf("notification target (role or user_id) is required")
}

// replacePlaceholders substitutes {field} tokens with record values.
func replacePlaceholders(template string, record map[string]interface{}) string {
	out := template
	for k, v := range record {
		out = strings.ReplaceAll(out, "{"+k+"}", fmt.Sprintf("%v", v))
	}
	return out
}
