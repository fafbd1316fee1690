package rbac

import (
	"expense-tools-backend/models"
	"regexp"
	"slices"
	"strings"

	"github.com/pkg/errors"
)

type Provider interface {
	GetRuleFunc(method, path string) (models.RbacFunc, bool)
	RegisterRule(module models.Module, permission models.Permission, roles []models.UserRole, swaggerPattern string, handler models.RbacFunc) error
	GetPermissions(role models.UserRole) map[models.Module][]models.Permission
}

var Instance Provider

func NewHandler() {
	i := &impl{
		rules:       map[HTTPMethod]*PathRule{},
		permissions: map[models.UserRole]map[models.Module][]models.Permission{},
	}
	i.initRules()
	Instance = i
}

type impl struct {
	rules       map[HTTPMethod]*PathRule
	permissions map[models.UserRole]map[models.Module][]models.Permission
}

// GetRuleFunc правило для метода, затем для ALL
func (i *impl) GetRuleFunc(method, path string) (models.RbacFunc, bool) {
	path = normalizePath(path)
	for _, httpMethod := range []HTTPMethod{HTTPMethod(strings.ToUpper(method)), ALL} {
		if handler, found := i.rules[httpMethod].find(path); found {
			return handler, true
		}
	}
	return nil, false
}

func (i *impl) RegisterRule(module models.Module, permission models.Permission, roles []models.UserRole, swaggerPattern string, handler models.RbacFunc) error {
	path, method, err := parseSwaggerPattern(swaggerPattern)
	if err != nil {
		return err
	}
	if handler == nil {
		handler = AllowByRoleFunc(roles)
	}

	rule, ok := i.rules[method]
	if !ok {
		rule = &PathRule{Exact: map[string]models.RbacFunc{}}
		i.rules[method] = rule
	}
	if err = rule.add(path, handler); err != nil {
		return errors.Wrapf(err, "правило %v", swaggerPattern)
	}

	// разделы и действия для фронта
	for _, role := range roles {
		modules, ok := i.permissions[role]
		if !ok {
			modules = map[models.Module][]models.Permission{}
			i.permissions[role] = modules
		}
		if !slices.Contains(modules[module], permission) {
			modules[module] = append(modules[module], permission)
		}
	}
	return nil
}

func (i *impl) GetPermissions(role models.UserRole) map[models.Module][]models.Permission {
	return i.permissions[role]
}

func (r *PathRule) add(path string, handler models.RbacFunc) error {
	if !strings.Contains(path, "{") {
		r.Exact[path] = handler
		return nil
	}
	pattern := pathToRegex(path)
	if pattern == nil {
		return errors.Errorf("не удалось разобрать путь %v", path)
	}
	r.Patterns = append(r.Patterns, PatternRule{Pattern: pattern, Handler: handler})
	return nil
}

// find точное совпадение важнее шаблона: /expense/my не попадает под /expense/{id}
func (r *PathRule) find(path string) (models.RbacFunc, bool) {
	if r == nil {
		return nil, false
	}
	if handler, ok := r.Exact[path]; ok {
		return handler, true
	}
	for _, rule := range r.Patterns {
		if rule.Pattern.MatchString(path) {
			return rule.Handler, true
		}
	}
	return nil, false
}

var pathParamRegex = regexp.MustCompile(`\\\{[^}]+?\\\}`)

// pathToRegex {param} заменяется на один сегмент пути
func pathToRegex(path string) *regexp.Regexp {
	pattern := pathParamRegex.ReplaceAllString(regexp.QuoteMeta(path), `[^/]+`)
	regex, err := regexp.Compile("^" + pattern + "$")
	if err != nil {
		return nil
	}
	return regex
}

func AllowFunc() models.RbacFunc {
	return func(userID string, role models.UserRole, uri string) bool {
		return true
	}
}

func AllowByRoleFunc(accessRoles []models.UserRole) models.RbacFunc {
	allowMap := map[models.UserRole]bool{}
	for _, role := range accessRoles {
		allowMap[role] = true
	}
	return func(userID string, role models.UserRole, uri string) bool {
		return allowMap[role]
	}
}

// AllowSelfOrRoleFunc доступ к /.../{id} для своего id или для ролей из списка
func AllowSelfOrRoleFunc(accessRoles []models.UserRole) models.RbacFunc {
	byRole := AllowByRoleFunc(accessRoles)
	return func(userID string, role models.UserRole, uri string) bool {
		if byRole(userID, role, uri) {
			return true
		}
		parts := strings.Split(normalizePath(uri), "/")
		return userID != "" && parts[len(parts)-1] == userID
	}
}

// parseSwaggerPattern разбирает строку вида "/api/v1/users [post]"
func parseSwaggerPattern(pattern string) (path string, method HTTPMethod, err error) {
	pattern = strings.TrimSpace(pattern)
	bracketStart := strings.LastIndex(pattern, "[")
	bracketEnd := strings.LastIndex(pattern, "]")
	if bracketStart == -1 || bracketEnd < bracketStart {
		return "", "", errors.Errorf("в правиле не указан метод (%v)", pattern)
	}
	method = HTTPMethod(strings.ToUpper(strings.TrimSpace(pattern[bracketStart+1 : bracketEnd])))
	if method == "" {
		return "", "", errors.Errorf("в правиле не указан метод (%v)", pattern)
	}
	return normalizePath(strings.TrimSpace(pattern[:bracketStart])), method, nil
}

func normalizePath(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	for strings.Contains(path, "//") {
		path = strings.ReplaceAll(path, "//", "/")
	}
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	return path
}
