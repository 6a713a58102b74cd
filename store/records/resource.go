package records

import "github.com/wstrucke/scs/errs"

// ResourceType enumerates the kinds of allocatable resource.
type ResourceType string

const (
	ResourceIP        ResourceType = "ip"
	ResourceClusterIP ResourceType = "cluster_ip"
	ResourceHAIP      ResourceType = "ha_ip"
)

// ResourceAssignType enumerates how a resource is bound to a consumer.
type ResourceAssignType string

const (
	AssignHost        ResourceAssignType = "host"
	AssignApplication ResourceAssignType = "application"
	AssignNone        ResourceAssignType = ""
)

// NotAssigned is the display value for resources with no AssignType.
const NotAssigned = "not assigned"

// Resource is the (type, value, assign_type, assign_to, name, description)
// entity. For assign_type=application, assign_to is "loc:env:app".
type Resource struct {
	Type        ResourceType
	Value       string
	AssignType  ResourceAssignType
	AssignTo    string
	Name        string
	Description string
}

// key composes type+value since a resource's natural identity is its value.
func (r *Resource) Key() string { return string(r.Type) + ":" + r.Value }

func (r *Resource) ToFields() []string {
	assignTo := r.AssignTo
	if r.AssignType == AssignNone {
		assignTo = NotAssigned
	}
	return []string{string(r.Type), r.Value, string(r.AssignType), assignTo, r.Name, r.Description}
}

func (r *Resource) FromFields(f []string) error {
	if err := expectFields("resource", f, 6); err != nil {
		return err
	}
	r.Type = ResourceType(f[0])
	r.Value = f[1]
	r.AssignType = ResourceAssignType(f[2])
	r.AssignTo = f[3]
	if r.AssignType == AssignNone {
		r.AssignTo = NotAssigned
	}
	r.Name, r.Description = f[4], f[5]
	return nil
}

func (r *Resource) Validate() error {
	switch r.Type {
	case ResourceIP, ResourceClusterIP, ResourceHAIP:
	default:
		return errs.Validationf("resource %s: invalid type %q", r.Value, r.Type)
	}
	switch r.AssignType {
	case AssignHost, AssignApplication, AssignNone:
	default:
		return errs.Validationf("resource %s: invalid assign_type %q", r.Value, r.AssignType)
	}
	if (r.AssignType == AssignHost || r.AssignType == AssignApplication) && (r.AssignTo == "" || r.AssignTo == NotAssigned) {
		return errs.Validationf("resource %s: assign_to is required when assign_type is set (I6)", r.Value)
	}
	return nil
}
