package basesvc

import (
	"context"
	"fmt"
	"print_commerce/internal/common"
	"print_commerce/internal/global"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RelationshipCheck dinh nghia mot quan he can kiem tra truoc khi xoa record
type RelationshipCheck struct {
	CollectionName string
	FieldName      string
	ErrorMessage   string
	Optional       bool
}

// checkRelationship dem record theo filter trong collection cua check va tra ve
// loi 409 neu con record tham chieu. Collection chua dang ky: optional thi bo
// qua, khong thi bao loi he thong.
func checkRelationship(ctx context.Context, check RelationshipCheck, filter bson.M) error {
	collection, exists := global.RegistryCollections.Get(check.CollectionName)
	if !exists {
		if check.Optional {
			return nil
		}
		return common.NewError(
			common.ErrCodeInternalServer,
			fmt.Sprintf("Khong tim thay collection '%s' de kiem tra quan he", check.CollectionName),
			common.StatusInternalServerError,
			nil,
		)
	}

	count, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		return common.ConvertMongoError(err)
	}
	if count == 0 {
		return nil
	}

	errorMsg := check.ErrorMessage
	if errorMsg == "" {
		errorMsg = fmt.Sprintf("Khong the xoa record vi co %d record trong collection '%s' dang tham chieu toi record nay", count, check.CollectionName)
	} else {
		errorMsg = fmt.Sprintf(check.ErrorMessage, count)
	}
	return common.NewError(common.ErrCodeBusinessOperation, errorMsg, common.StatusConflict, nil)
}

// CheckRelationshipExists kiem tra co record nao trong collection khac dang tro
// toi record nay khong (filter theo FieldName = recordID cua tung check).
func CheckRelationshipExists(ctx context.Context, recordID primitive.ObjectID, checks []RelationshipCheck) error {
	for _, check := range checks {
		if err := checkRelationship(ctx, check, bson.M{check.FieldName: recordID}); err != nil {
			return err
		}
	}
	return nil
}

// CheckRelationshipExistsWithFilter kiem tra quan he voi filter tuy chinh,
// dung khi dieu kien chan phuc tap hon mot field (vd: chi chan theo status).
func CheckRelationshipExistsWithFilter(ctx context.Context, filter bson.M, checks []RelationshipCheck) error {
	for _, check := range checks {
		if err := checkRelationship(ctx, check, filter); err != nil {
			return err
		}
	}
	return nil
}

// ValidateBeforeDeleteProduct kiem tra cac quan he cua san pham truoc khi xoa
func ValidateBeforeDeleteProduct(ctx context.Context, productID primitive.ObjectID) error {
	checks := []RelationshipCheck{
		{CollectionName: global.MongoDB_ColNames.OrderItemDetails, FieldName: "productId", ErrorMessage: "Khong the xoa san pham vi co %d dong hang da dat tham chieu toi san pham nay. Hoa don cu can du lieu san pham de doi chieu."},
	}
	return CheckRelationshipExists(ctx, productID, checks)
}

// ValidateBeforeDeleteOrder kiem tra cac quan he cua don hang truoc khi xoa.
// Chi chan khi con email hoa don dang cho gui (pending) - lich su da gui/that bai
// duoc xoa theo don (cascade) nen khong tinh.
func ValidateBeforeDeleteOrder(ctx context.Context, orderID primitive.ObjectID) error {
	checks := []RelationshipCheck{
		{CollectionName: global.MongoDB_ColNames.ReceiptMailQueue, ErrorMessage: "Khong the xoa don hang vi co %d email hoa don dang cho gui cho don hang nay."},
	}
	filter := bson.M{"orderId": orderID, "status": "pending"}
	return CheckRelationshipExistsWithFilter(ctx, filter, checks)
}
