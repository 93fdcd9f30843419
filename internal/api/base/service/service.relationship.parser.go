package basesvc

import (
	"fmt"
	"reflect"
	"strings"
)

// RelationshipDefinition mo ta mot rang buoc tham chieu khai bao bang struct tag
// `relationship` tren model. Vi du tren Order:
//
//	_Relationships interface{} `relationship:"collection:receipt_mail_queue,field:orderId,message:..."`
//
// Nhieu rang buoc trong cung mot tag phan cach boi '|', cac option trong mot
// rang buoc phan cach boi ','.
type RelationshipDefinition struct {
	CollectionName string // Collection co record dang tham chieu toi model nay
	FieldName      string // Field ObjectID trong collection do
	ErrorMessage   string // Message khi bi chan, ho tro %d = so record tham chieu
	Optional       bool   // true: collection chua dang ky thi bo qua thay vi bao loi
	Cascade        bool   // true: service tu xoa record con, base service khong chan
}

// ParseRelationshipTag doc cac dinh nghia quan he tu struct tag cua model.
// Tag duoc tim tren field danh dau _Relationships va tren tung field thuong,
// cho phep model khai bao rang buoc ngay canh field tham chieu.
func ParseRelationshipTag(structType reflect.Type) []RelationshipDefinition {
	var defs []RelationshipDefinition
	if field, ok := structType.FieldByName("_Relationships"); ok {
		defs = append(defs, parseRelationshipTagValue(field.Tag.Get("relationship"))...)
	}
	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		if field.Name == "_Relationships" {
			continue
		}
		defs = append(defs, parseRelationshipTagValue(field.Tag.Get("relationship"))...)
	}
	return defs
}

// parseRelationshipTagValue phan tich gia tri tag thanh danh sach dinh nghia.
// Dinh nghia thieu collection hoac field bi bo qua. Message chua dau ':' van
// doc dung vi chi tach key:value tai dau ':' dau tien.
func parseRelationshipTagValue(tagValue string) []RelationshipDefinition {
	if tagValue == "" {
		return nil
	}

	var defs []RelationshipDefinition
	for _, part := range strings.Split(tagValue, "|") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		def := RelationshipDefinition{}
		for _, pair := range strings.Split(part, ",") {
			kv := strings.SplitN(strings.TrimSpace(pair), ":", 2)
			if len(kv) != 2 {
				continue
			}
			key := strings.TrimSpace(kv[0])
			value := strings.TrimSpace(kv[1])
			switch key {
			case "collection":
				def.CollectionName = value
			case "field":
				def.FieldName = value
			case "message", "msg":
				def.ErrorMessage = value
			case "optional":
				def.Optional = value == "true" || value == "1"
			case "cascade":
				def.Cascade = value == "true" || value == "1"
			}
		}

		if def.CollectionName == "" || def.FieldName == "" {
			continue
		}
		if def.ErrorMessage == "" {
			def.ErrorMessage = fmt.Sprintf("Khong the xoa record vi co %%d record trong collection '%s' dang tham chieu toi.", def.CollectionName)
		}
		defs = append(defs, def)
	}
	return defs
}
