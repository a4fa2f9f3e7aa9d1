package tool

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/schema"

	contractx "github.com/metroequip/rental-desk/agent/contract"
	rentalx "github.com/metroequip/rental-desk/agent/rental"
)

// Tool names exposed to the external reasoning agent.
const (
	ToolGetCurrentStage           = "get_current_stage"
	ToolGetStageInstructions      = "get_stage_instructions"
	ToolMoveToNextStage           = "move_to_next_stage"
	ToolVerifyBusinessLicense     = "verify_business_license"
	ToolListAvailableEquipment    = "list_available_equipment"
	ToolGetEquipmentDetails       = "get_equipment_details"
	ToolNegotiatePrice            = "negotiate_price"
	ToolVerifySiteSafety          = "verify_site_safety"
	ToolVerifyOperatorCredentials = "verify_operator_credentials"
	ToolVerifyInsuranceCoverage   = "verify_insurance_coverage"
	ToolBookEquipment             = "book_equipment"
	ToolEndConversation           = "end_conversation"
)

// Executor runs one tool invocation for one conversation session.
type Executor func(ctx context.Context, tool string, args map[string]any) (contractx.ToolResult, error)

// BuildForSession returns the tool declarations plus an executor bound to
// one conversation session.
func BuildForSession(svc *rentalx.Service, sess *rentalx.Session) ([]*schema.ToolInfo, Executor) {
	return Infos(), NewExecutor(svc, sess)
}

// NewExecutor dispatches tool invocations into the rental service. All
// domain failures come back as textual results; only malformed invocations
// (unknown tool, missing argument) surface through the Error field.
func NewExecutor(svc *rentalx.Service, sess *rentalx.Session) Executor {
	return func(ctx context.Context, tool string, args map[string]any) (contractx.ToolResult, error) {
		text, err := dispatch(ctx, svc, sess, tool, args)
		if err != nil {
			return contractx.ToolResult{Tool: tool, Error: err.Error()}, nil
		}
		return contractx.ToolResult{Tool: tool, Result: text}, nil
	}
}

func dispatch(ctx context.Context, svc *rentalx.Service, sess *rentalx.Session, tool string, args map[string]any) (string, error) {
	switch tool {
	case ToolGetCurrentStage:
		return svc.CurrentStage(sess), nil

	case ToolGetStageInstructions:
		return svc.StageInstructions(sess), nil

	case ToolMoveToNextStage:
		return svc.MoveToNextStage(sess), nil

	case ToolVerifyBusinessLicense:
		license, err := stringArg(args, "license_number")
		if err != nil {
			return "", err
		}
		return svc.VerifyBusinessLicense(sess, license), nil

	case ToolListAvailableEquipment:
		return svc.ListAvailableEquipment(ctx), nil

	case ToolGetEquipmentDetails:
		id, err := stringArg(args, "equipment_id")
		if err != nil {
			return "", err
		}
		return svc.GetEquipmentDetails(ctx, id), nil

	case ToolNegotiatePrice:
		id, err := stringArg(args, "equipment_id")
		if err != nil {
			return "", err
		}
		// Intent and urgency tokens are optional; unknown values degrade
		// to neutral/normal inside the engine.
		intent, _ := stringArg(args, "intent")
		urgency, _ := stringArg(args, "urgency_level")
		return svc.NegotiatePrice(ctx, sess, id, intent, urgency), nil

	case ToolVerifySiteSafety:
		address, err := stringArg(args, "job_address")
		if err != nil {
			return "", err
		}
		category, err := stringArg(args, "equipment_category")
		if err != nil {
			return "", err
		}
		weightClass, err := stringArg(args, "weight_class")
		if err != nil {
			return "", err
		}
		return svc.VerifySiteSafety(sess, address, category, weightClass), nil

	case ToolVerifyOperatorCredentials:
		license, err := stringArg(args, "operator_license")
		if err != nil {
			return "", err
		}
		certType, err := stringArg(args, "certification_type")
		if err != nil {
			return "", err
		}
		return svc.VerifyOperatorCredentials(sess, license, certType), nil

	case ToolVerifyInsuranceCoverage:
		policy, err := stringArg(args, "policy_number")
		if err != nil {
			return "", err
		}
		id, err := stringArg(args, "equipment_id")
		if err != nil {
			return "", err
		}
		return svc.VerifyInsuranceCoverage(ctx, sess, policy, id), nil

	case ToolBookEquipment:
		id, err := stringArg(args, "equipment_id")
		if err != nil {
			return "", err
		}
		return svc.BookEquipment(ctx, sess, id), nil

	case ToolEndConversation:
		return svc.EndConversation(sess), nil

	default:
		return "", fmt.Errorf("tool=%s is not available", tool)
	}
}

func stringArg(args map[string]any, key string) (string, error) {
	raw, ok := args[key]
	if !ok {
		return "", fmt.Errorf("%s is required", key)
	}
	value, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%s must be a string", key)
	}
	return value, nil
}

// Infos declares every rental tool for the model. The descriptions carry the
// stage-discipline guardrails the reasoning agent relies on.
func Infos() []*schema.ToolInfo {
	return []*schema.ToolInfo{
		{
			Name: ToolGetCurrentStage,
			Desc: "Get the current stage of the 7-stage rental process.",
		},
		{
			Name: ToolGetStageInstructions,
			Desc: "Get the detailed checklist of allowed actions for the current stage.",
		},
		{
			Name: ToolMoveToNextStage,
			Desc: "Move to the next stage once the current stage is complete. Stages never skip or go backward.",
		},
		{
			Name: ToolVerifyBusinessLicense,
			Desc: "Verify the customer's business license with state authorities.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"license_number": {Type: schema.String, Desc: "Business license number", Required: true},
			}),
		},
		{
			Name: ToolListAvailableEquipment,
			Desc: "List all equipment currently available for rent.",
		},
		{
			Name: ToolGetEquipmentDetails,
			Desc: "Get details about specific equipment. Internal pricing bounds are never included.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"equipment_id": {Type: schema.String, Desc: "Equipment id, e.g. EQ001", Required: true},
			}),
		},
		{
			Name: ToolNegotiatePrice,
			Desc: "Handle pricing negotiation. Intent is accept, request_discount or neutral; urgency_level is low, normal, high or critical.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"equipment_id":  {Type: schema.String, Desc: "Equipment id under negotiation", Required: true},
				"intent":        {Type: schema.String, Desc: "Customer intent: accept | request_discount | neutral"},
				"urgency_level": {Type: schema.String, Desc: "Customer urgency: low | normal | high | critical"},
			}),
		},
		{
			Name: ToolVerifySiteSafety,
			Desc: "Verify the job site can safely handle the equipment.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"job_address":        {Type: schema.String, Desc: "Job site address", Required: true},
				"equipment_category": {Type: schema.String, Desc: "Category of the selected equipment", Required: true},
				"weight_class":       {Type: schema.String, Desc: "Weight class of the selected equipment", Required: true},
			}),
		},
		{
			Name: ToolVerifyOperatorCredentials,
			Desc: "Verify the operator's license for the required certification type.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"operator_license":   {Type: schema.String, Desc: "Operator license number", Required: true},
				"certification_type": {Type: schema.String, Desc: "Certification required by the equipment", Required: true},
			}),
		},
		{
			Name: ToolVerifyInsuranceCoverage,
			Desc: "Verify the customer's insurance coverage against the equipment's minimum.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"policy_number": {Type: schema.String, Desc: "Insurance policy number", Required: true},
				"equipment_id":  {Type: schema.String, Desc: "Selected equipment id", Required: true},
			}),
		},
		{
			Name: ToolBookEquipment,
			Desc: "Book equipment by transitioning its status to RENTED. Fails if another customer booked it first.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"equipment_id": {Type: schema.String, Desc: "Equipment id to book", Required: true},
			}),
		},
		{
			Name: ToolEndConversation,
			Desc: "Mark the conversation as complete after post-booking wrap-up is acknowledged.",
		},
	}
}
