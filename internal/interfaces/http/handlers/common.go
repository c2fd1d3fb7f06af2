// Package handlers implements the gin handlers of the advisory API.
package handlers

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/netellus-advisor/internal/domain/casestudy"
	"github.com/turtacn/netellus-advisor/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/netellus-advisor/internal/interfaces/http/response"
	"github.com/turtacn/netellus-advisor/pkg/errors"
)

// bindJSON decodes the request body into dst, mapping decode failures to
// CodeInvalidParam.
func bindJSON(c *gin.Context, dst interface{}) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return errors.InvalidParam("invalid request body").WithDetail(err.Error())
	}
	return nil
}

// parseGoal accepts a JSON number or a numeric string such as "1,200".
func parseGoal(v interface{}) (float64, error) {
	var (
		f   float64
		err error
	)
	switch x := v.(type) {
	case nil:
		return 0, errors.New(errors.CodeInvalidGoal, "goal is required")
	case float64:
		f = x
	case json.Number:
		f, err = x.Float64()
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(x), ",", "")
		if s == "" {
			return 0, errors.New(errors.CodeInvalidGoal, "goal is required")
		}
		f, err = strconv.ParseFloat(s, 64)
	default:
		err = fmt.Errorf("unsupported type %T", v)
	}
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0, errors.New(errors.CodeInvalidGoal, "goal must be a finite, non-negative number").
			WithDetail(fmt.Sprintf("goal=%v", v))
	}
	return f, nil
}

// stringFields flattens submitted form values to strings.  Keys with null
// values are dropped.
func stringFields(in map[string]interface{}) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		if v == nil {
			continue
		}
		out[k] = casestudy.ToText(v)
	}
	return out
}

// writeError writes err as an envelope, logging it when it maps to a 5xx.
func writeError(c *gin.Context, logger logging.Logger, msg string, err error) {
	if status, _ := response.FromError(err); status >= 500 {
		logger.WithContext(c.Request.Context()).Error(msg, logging.Err(err))
	}
	response.Error(c, err)
}
