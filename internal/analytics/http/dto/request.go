// Package dto provides data transfer objects for analytics HTTP handlers.
package dto

import (
	validation "github.com/jellydator/validation"

	analyticsDomain "github.com/allisson/privmetrics/internal/analytics/domain"
	"github.com/allisson/privmetrics/internal/privacy/noise"
	tokenizationDomain "github.com/allisson/privmetrics/internal/tokenization/domain"
	customValidation "github.com/allisson/privmetrics/internal/validation"
)

// IngestEventRequest contains an event to record. FieldTokenizationMap names
// the properties that hold identifying values and the field type to tokenize
// each one as.
type IngestEventRequest struct {
	Properties           map[string]any    `json:"properties"`
	FieldTokenizationMap map[string]string `json:"field_tokenization_map"`
}

// Validate checks if the ingest request is valid.
func (r *IngestEventRequest) Validate() error {
	if err := validation.ValidateStruct(r,
		validation.Field(&r.Properties, validation.Required),
	); err != nil {
		return err
	}
	for property, fieldType := range r.FieldTokenizationMap {
		if property == "" {
			return validation.NewError("validation_field_map", "field map property names cannot be empty")
		}
		if err := (customValidation.FieldTypeRule{}).Validate(fieldType); err != nil {
			return err
		}
	}
	return nil
}

// DomainFieldMap converts the wire field map to the domain representation.
func (r *IngestEventRequest) DomainFieldMap() analyticsDomain.FieldTokenizationMap {
	if len(r.FieldTokenizationMap) == 0 {
		return nil
	}
	fieldMap := make(analyticsDomain.FieldTokenizationMap, len(r.FieldTokenizationMap))
	for property, fieldType := range r.FieldTokenizationMap {
		fieldMap[property] = tokenizationDomain.FieldType(fieldType)
	}
	return fieldMap
}

// QueryRequest contains the parameters for a differentially private aggregate.
// Mechanism defaults to laplace when omitted.
type QueryRequest struct {
	Metric    string            `json:"metric"`
	Property  string            `json:"property"`
	Filters   map[string]string `json:"filters"`
	Epsilon   float64           `json:"epsilon"`
	Delta     float64           `json:"delta"`
	Mechanism string            `json:"mechanism"`
	ClampMin  float64           `json:"clamp_min"`
	ClampMax  float64           `json:"clamp_max"`
}

// Validate checks if the query request is valid. Metric-specific constraints
// (clamp bounds, property requirement) are validated by the domain request.
func (r *QueryRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Metric, validation.Required),
		validation.Field(&r.Epsilon, customValidation.EpsilonRange{}),
		validation.Field(&r.Delta, customValidation.DeltaRange{}),
	)
}

// DomainRequest converts the wire query to a domain query for the scope.
func (r *QueryRequest) DomainRequest(scope string) *analyticsDomain.QueryRequest {
	mechanism := noise.MechanismKind(r.Mechanism)
	if r.Mechanism == "" {
		mechanism = noise.MechanismLaplace
	}
	return &analyticsDomain.QueryRequest{
		Scope:     scope,
		Metric:    analyticsDomain.MetricKind(r.Metric),
		Property:  r.Property,
		Filters:   r.Filters,
		Epsilon:   r.Epsilon,
		Delta:     r.Delta,
		Mechanism: mechanism,
		ClampMin:  r.ClampMin,
		ClampMax:  r.ClampMax,
	}
}
