// Package criterion models the "which fields, which filters" part of a request
// to the Google APIs as a composable tree, and compiles such trees into query
// parameters.
//
// A tree is made of two node kinds. A Field is either a leaf (a field name, or a
// filter carrying a scalar value) or a field selector grouping sub-fields. A
// Collection groups children under a wire parameter name such as "fields" and
// never carries a value of its own.
//
//	query := criterion.Collection("",
//	    criterion.Collection("fields",
//	        criterion.Field("",
//	            criterion.Field("nextPageToken"),
//	            criterion.Field("items", criterion.Field("id"), criterion.Field("summary")),
//	        ),
//	    ),
//	    criterion.Flag("showDeleted"),
//	)
//
//	criterion.Build(query)
//	// map[fields:nextPageToken,items(id,summary) showDeleted:true]
//
// Trees are owned outright by their root: Clone and Merge never share nodes
// between the receiver, the argument and the result.
package criterion
