package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/kozaktomas/attendance-kiosk/internal/constants"
)

// RegisterEmployee enrolls an employee with face images in capture order.
func (c *Client) RegisterEmployee(ctx context.Context, data EmployeeData, images []Image) (*RegisterResult, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("could not marshal employee data: %w", err)
	}

	result, err := doMultipartJSON[messageResponse](ctx, c, "admin/register-employee", func(w *multipart.Writer) error {
		if err := w.WriteField(constants.FieldEmployeeData, string(payload)); err != nil {
			return fmt.Errorf("could not write employee data: %w", err)
		}
		for _, img := range images {
			if err := addImage(w, constants.FieldImages, img); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info("Backend: employee registered", "employee_id", data.EmployeeID, "images", len(images))
	return &RegisterResult{Message: result.Message}, nil
}

// ListEmployees returns every registered employee.
func (c *Client) ListEmployees(ctx context.Context) ([]Employee, error) {
	result, err := doGetJSON[[]Employee](ctx, c, "admin/employees")
	if err != nil {
		return nil, err
	}
	return *result, nil
}

// DeleteEmployee removes an employee and their attendance records.
func (c *Client) DeleteEmployee(ctx context.Context, employeeID string) error {
	if _, err := c.do(ctx, http.MethodDelete, "admin/employees/"+url.PathEscape(employeeID), nil, ""); err != nil {
		return err
	}
	c.logger.Info("Backend: employee deleted", "employee_id", employeeID)
	return nil
}

// EmployeeStatus returns aggregated attendance statistics for one employee.
func (c *Client) EmployeeStatus(ctx context.Context, employeeID string) (*EmployeeStatus, error) {
	return doGetJSON[EmployeeStatus](ctx, c, "admin/employee-status/"+url.PathEscape(employeeID))
}
