package mongo

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/man7ober/natours/internal/core/query"
)

// compileFilter turns the typed filter expressions into a MongoDB filter
// document. The base filter (secret-tour exclusion, active-user constraint,
// nested-route narrowing) is merged in; criteria filters never override it.
// Every comparison compiles to its operator form ($eq included), so filters
// on the same field accumulate into one operator document regardless of the
// order the URL parameters arrive in.
func compileFilter(c query.Criteria, base bson.M) bson.M {
	filter := bson.M{}
	for k, v := range base {
		filter[k] = v
	}

	for _, f := range c.Filters {
		if _, fromBase := base[f.Field]; fromBase {
			continue
		}
		ops, ok := filter[f.Field].(bson.M)
		if !ok {
			ops = bson.M{}
			filter[f.Field] = ops
		}
		ops["$"+string(f.Op)] = f.Value
	}
	return filter
}

// compileFindOptions maps sort, projection, and pagination onto find options.
// Without an explicit field list only the legacy version field is excluded,
// matching the behaviour of documents migrated from the old deployment.
func compileFindOptions(c query.Criteria) *options.FindOptions {
	opts := options.Find()

	if len(c.Sort) > 0 {
		sort := bson.D{}
		for _, s := range c.Sort {
			dir := 1
			if s.Desc {
				dir = -1
			}
			sort = append(sort, bson.E{Key: s.Field, Value: dir})
		}
		opts.SetSort(sort)
	}

	if len(c.Fields) > 0 {
		projection := bson.M{}
		for _, f := range c.Fields {
			projection[f] = 1
		}
		opts.SetProjection(projection)
	} else {
		opts.SetProjection(bson.M{"__v": 0})
	}

	opts.SetSkip(c.Skip())
	opts.SetLimit(c.Limit)
	return opts
}
