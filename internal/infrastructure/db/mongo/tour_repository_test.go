package mongo

import (
	"reflect"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestNotSecret_AddsExclusionToSingleReads(t *testing.T) {
	id := primitive.NewObjectID()

	byID := notSecret(bson.M{"_id": id})
	want := bson.M{"_id": id, "secretTour": bson.M{"$ne": true}}
	if !reflect.DeepEqual(byID, want) {
		t.Fatalf("filter = %#v, want %#v", byID, want)
	}

	bySlug := notSecret(bson.M{"slug": "the-forest-hiker"})
	if !reflect.DeepEqual(bySlug["secretTour"], bson.M{"$ne": true}) {
		t.Fatalf("slug filter missing secret exclusion: %#v", bySlug)
	}
	if bySlug["slug"] != "the-forest-hiker" {
		t.Fatalf("slug predicate lost: %#v", bySlug)
	}
}
