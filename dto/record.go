package dto

import "strconv"

// FieldType is the wire type of a schema field.
type FieldType string

const (
	FieldString FieldType = "string"
	FieldNumber FieldType = "number"
)

// Field describes one column of the KYC record schema.
type Field struct {
	Name string
	Type FieldType
}

// ConfidenceScoreField and ModelUsedField are the two derived metadata columns
// appended after the extracted form fields.
const (
	ConfidenceScoreField = "confidence_score"
	ModelUsedField       = "model_used"
)

// schema is the closed, ordered field set every KYC record exposes. The order
// is load-bearing: store headers, export columns and the response schema sent
// to extraction backends all follow it.
var schema = []Field{
	{Name: "document_title", Type: FieldString},
	{Name: "society_name", Type: FieldString},
	{Name: "control_number", Type: FieldString},
	{Name: "name", Type: FieldString},
	{Name: "father_husband_name", Type: FieldString},
	{Name: "designation", Type: FieldString},
	{Name: "bill_unit_number", Type: FieldString},
	{Name: "department", Type: FieldString},
	{Name: "sr_number", Type: FieldString},
	{Name: "office_address", Type: FieldString},
	{Name: "residential_address", Type: FieldString},
	{Name: "date_of_birth", Type: FieldString},
	{Name: "date_of_appointment", Type: FieldString},
	{Name: "mobile_number", Type: FieldString},
	{Name: "pan_number", Type: FieldString},
	{Name: "aadhar_number", Type: FieldString},
	{Name: "bank_name", Type: FieldString},
	{Name: "branch_name", Type: FieldString},
	{Name: "branch_code", Type: FieldString},
	{Name: "account_number", Type: FieldString},
	{Name: "ifsc_code", Type: FieldString},
	{Name: "nominee_name", Type: FieldString},
	{Name: "nominee_relation", Type: FieldString},
	{Name: "nominee_dob", Type: FieldString},
	{Name: "nominee_aadhar", Type: FieldString},
	{Name: "nominee_pan", Type: FieldString},
	{Name: ConfidenceScoreField, Type: FieldNumber},
	{Name: ModelUsedField, Type: FieldString},
}

// Schema returns the ordered field descriptors. Callers must not mutate the
// returned slice.
func Schema() []Field {
	return schema
}

// FieldNames returns the field identifiers in schema order.
func FieldNames() []string {
	names := make([]string, len(schema))
	for i, f := range schema {
		names[i] = f.Name
	}
	return names
}

// KYCRecord is the canonical extracted entity. Every field is optional;
// absent values marshal as JSON null rather than being omitted, so every
// serialized record carries the full closed field set.
type KYCRecord struct {
	DocumentTitle      *string  `json:"document_title"`
	SocietyName        *string  `json:"society_name"`
	ControlNumber      *string  `json:"control_number"`
	Name               *string  `json:"name"`
	FatherHusbandName  *string  `json:"father_husband_name"`
	Designation        *string  `json:"designation"`
	BillUnitNumber     *string  `json:"bill_unit_number"`
	Department         *string  `json:"department"`
	SRNumber           *string  `json:"sr_number"`
	OfficeAddress      *string  `json:"office_address"`
	ResidentialAddress *string  `json:"residential_address"`
	DateOfBirth        *string  `json:"date_of_birth"`
	DateOfAppointment  *string  `json:"date_of_appointment"`
	MobileNumber       *string  `json:"mobile_number"`
	PANNumber          *string  `json:"pan_number"`
	AadharNumber       *string  `json:"aadhar_number"`
	BankName           *string  `json:"bank_name"`
	BranchName         *string  `json:"branch_name"`
	BranchCode         *string  `json:"branch_code"`
	AccountNumber      *string  `json:"account_number"`
	IFSCCode           *string  `json:"ifsc_code"`
	NomineeName        *string  `json:"nominee_name"`
	NomineeRelation    *string  `json:"nominee_relation"`
	NomineeDOB         *string  `json:"nominee_dob"`
	NomineeAadhar      *string  `json:"nominee_aadhar"`
	NomineePAN         *string  `json:"nominee_pan"`
	ConfidenceScore    *float64 `json:"confidence_score"`
	ModelUsed          *string  `json:"model_used"`
}

// stringField returns a pointer to the string field with the given schema
// name, or nil for unknown names and the numeric confidence column. Spelled
// out explicitly so the schema stays a value, not a reflection exercise.
func (r *KYCRecord) stringField(name string) **string {
	switch name {
	case "document_title":
		return &r.DocumentTitle
	case "society_name":
		return &r.SocietyName
	case "control_number":
		return &r.ControlNumber
	case "name":
		return &r.Name
	case "father_husband_name":
		return &r.FatherHusbandName
	case "designation":
		return &r.Designation
	case "bill_unit_number":
		return &r.BillUnitNumber
	case "department":
		return &r.Department
	case "sr_number":
		return &r.SRNumber
	case "office_address":
		return &r.OfficeAddress
	case "residential_address":
		return &r.ResidentialAddress
	case "date_of_birth":
		return &r.DateOfBirth
	case "date_of_appointment":
		return &r.DateOfAppointment
	case "mobile_number":
		return &r.MobileNumber
	case "pan_number":
		return &r.PANNumber
	case "aadhar_number":
		return &r.AadharNumber
	case "bank_name":
		return &r.BankName
	case "branch_name":
		return &r.BranchName
	case "branch_code":
		return &r.BranchCode
	case "account_number":
		return &r.AccountNumber
	case "ifsc_code":
		return &r.IFSCCode
	case "nominee_name":
		return &r.NomineeName
	case "nominee_relation":
		return &r.NomineeRelation
	case "nominee_dob":
		return &r.NomineeDOB
	case "nominee_aadhar":
		return &r.NomineeAadhar
	case "nominee_pan":
		return &r.NomineePAN
	case ModelUsedField:
		return &r.ModelUsed
	}
	return nil
}

// Get returns the value of the named field formatted as a string. ok is false
// when the field is absent (null) or the name is not part of the schema.
func (r *KYCRecord) Get(name string) (value string, ok bool) {
	if name == ConfidenceScoreField {
		if r.ConfidenceScore == nil {
			return "", false
		}
		return strconv.FormatFloat(*r.ConfidenceScore, 'f', -1, 64), true
	}
	p := r.stringField(name)
	if p == nil || *p == nil {
		return "", false
	}
	return **p, true
}

// Set assigns the named field from a string value. Values for the confidence
// column are parsed as floats; unparsable ones leave the field null. Names
// outside the schema are dropped.
func (r *KYCRecord) Set(name, value string) {
	if name == ConfidenceScoreField {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			r.ConfidenceScore = &f
		}
		return
	}
	if p := r.stringField(name); p != nil {
		v := value
		*p = &v
	}
}

// AsMap returns the record as a field-name keyed map covering the full
// schema. Absent fields map to nil.
func (r *KYCRecord) AsMap() map[string]interface{} {
	m := make(map[string]interface{}, len(schema))
	for _, f := range schema {
		switch f.Name {
		case ConfidenceScoreField:
			if r.ConfidenceScore != nil {
				m[f.Name] = *r.ConfidenceScore
			} else {
				m[f.Name] = nil
			}
		default:
			if p := r.stringField(f.Name); p != nil && *p != nil {
				m[f.Name] = **p
			} else {
				m[f.Name] = nil
			}
		}
	}
	return m
}

// Row returns the record's cell values in schema order, nil for absent
// fields. This is the shape the tabular store writes.
func (r *KYCRecord) Row() []interface{} {
	row := make([]interface{}, len(schema))
	for i, f := range schema {
		switch f.Name {
		case ConfidenceScoreField:
			if r.ConfidenceScore != nil {
				row[i] = *r.ConfidenceScore
			}
		default:
			if p := r.stringField(f.Name); p != nil && *p != nil {
				row[i] = **p
			}
		}
	}
	return row
}

// FromRow rebuilds a record from cell values in schema order. Empty cells
// and cells beyond the schema width are treated as null / dropped.
func FromRow(cells []string) *KYCRecord {
	r := &KYCRecord{}
	for i, f := range schema {
		if i >= len(cells) || cells[i] == "" {
			continue
		}
		r.Set(f.Name, cells[i])
	}
	return r
}

// Clone returns a deep copy of the record.
func (r *KYCRecord) Clone() *KYCRecord {
	out := &KYCRecord{}
	for _, f := range schema {
		if v, ok := r.Get(f.Name); ok {
			out.Set(f.Name, v)
		}
	}
	return out
}
