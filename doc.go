// Package esodm maps Go structs to Elasticsearch indices and documents.
//
// Struct fields are mapped with `es` tags; field names come from `json` tags.
// The `id` modifier marks the field that carries the document _id.
//
//	type User struct {
//	    ID      string `json:"id"      es:"keyword,id"`
//	    Name    string `json:"name"    es:"text"`
//	    Age     int64  `json:"age"     es:"long"`
//	    Address string `json:"address" es:"text"`
//	}
//
//	func (User) IndexName() string { return "es-test" }
//
//	client, _ := esodm.New(ctx, esodm.WithAddresses("http://localhost:9200"))
//	users, _ := esodm.NewIndex[User](client)
//	_, _ = users.Ensure(ctx, esodm.NewSettings(1, 0))
//	_, _ = users.Save(ctx, User{ID: "1", Name: "Allen", Age: 20})
//
//	hits, _ := users.Search().
//	    Query(esodm.Match("address", "Qingdao")).
//	    Sort("age", esodm.Desc).
//	    Page(0, 10).
//	    Do(ctx)
//	for _, u := range hits.Contents() {
//	    fmt.Println(u.Name)
//	}
package esodm
