// Package entity holds the sample documents used by the examples and tests.
package entity

// User is a person stored in the "es-test" index.
type User struct {
	ID      string `json:"id"      es:"keyword,id"`
	Name    string `json:"name"    es:"keyword"`
	Age     int64  `json:"age"     es:"long"`
	Sex     string `json:"sex"     es:"text"`
	Address string `json:"address" es:"text"`
}

// IndexName implements esodm.Indexed.
func (User) IndexName() string { return "es-test" }

// Product is a catalog item stored in the "products" index.
// It has no id field: the engine assigns _id.
type Product struct {
	SKU      string   `json:"sku"      es:"keyword"`
	Price    float64  `json:"price"    es:"double"`
	Stock    int64    `json:"stock"    es:"long"`
	PlatTags []string `json:"platTags" es:"keyword"`
}

// IndexName implements esodm.Indexed.
func (Product) IndexName() string { return "products" }

// UserMapping is the explicit "es-test" mapping used when the index is created by hand.
const UserMapping = `{"properties":{` +
	`"id":{"type":"keyword"},"name":{"type":"keyword"},"age":{"type":"long"},` +
	`"sex":{"type":"text"},"address":{"type":"text"}}}`

// SeedUsers returns the bulk-loaded users 21..26.
func SeedUsers() []User {
	return []User{
		{ID: "21", Name: "张三", Age: 21, Sex: "男", Address: "威海"},
		{ID: "22", Name: "李四", Age: 22, Sex: "女", Address: "上海"},
		{ID: "23", Name: "王五", Age: 23, Sex: "男", Address: "青岛"},
		{ID: "24", Name: "赵六", Age: 24, Sex: "女", Address: "青海"},
		{ID: "25", Name: "孙七", Age: 25, Sex: "男", Address: "辽宁"},
		{ID: "26", Name: "胡八", Age: 26, Sex: "女", Address: "连云港"},
	}
}

// SeedProducts returns products sku1..sku5.
func SeedProducts() []Product {
	return []Product{
		{SKU: "sku1", Price: 12.1, Stock: 22, PlatTags: []string{"1", "2", "3", "4"}},
		{SKU: "sku2", Price: 12.2, Stock: 23, PlatTags: []string{"1", "2"}},
		{SKU: "sku3", Price: 12.3, Stock: 24, PlatTags: []string{"3", "4"}},
		{SKU: "sku4", Price: 12.4, Stock: 25, PlatTags: []string{"2", "3"}},
		{SKU: "sku5", Price: 12.5, Stock: 26, PlatTags: []string{"1", "4"}},
	}
}
