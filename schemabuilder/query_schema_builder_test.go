package schemabuilder

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/kylelemons/godebug/pretty"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"go.appointy.com/queryschema/capability"
	"go.appointy.com/queryschema/datamodel"
	"go.appointy.com/queryschema/schema"
)

func fieldNames(o *schema.ObjectType) []string {
	out := []string{}
	for _, f := range o.Fields() {
		out = append(out, f.Name)
	}
	return out
}

func inputFieldNames(o *schema.InputObjectType) []string {
	out := []string{}
	for _, f := range o.Fields() {
		out = append(out, f.Name)
	}
	return out
}

func argumentNames(f *schema.Field) []string {
	out := []string{}
	for _, a := range f.Arguments {
		out = append(out, a.Name)
	}
	return out
}

func userModel() *datamodel.Model {
	return &datamodel.Model{
		Name: "User",
		Fields: []*datamodel.Field{
			{Name: "id", Type: datamodel.ID, IsID: true, IsRequired: true, IsAutoGenerated: true},
			{Name: "email", Type: datamodel.String, IsUnique: true, IsRequired: true},
			{Name: "name", Type: datamodel.String},
		},
	}
}

// blog is User, Post and an embedded Address with a Role enum and relations
// in both directions.
func blog() *datamodel.InternalDataModel {
	return datamodel.MustNew([]*datamodel.Model{
		{
			Name: "User",
			Fields: []*datamodel.Field{
				{Name: "id", Type: datamodel.ID, IsID: true, IsRequired: true, IsAutoGenerated: true},
				{Name: "email", Type: datamodel.String, IsUnique: true, IsRequired: true},
				{Name: "role", Type: datamodel.Enum, Enum: "Role", IsRequired: true, Default: "MEMBER"},
				{Name: "nicknames", Type: datamodel.String, IsList: true},
				{Name: "meta", Type: datamodel.JSON},
				{Name: "password", Type: datamodel.String, IsHidden: true},
				{Name: "posts", Type: datamodel.Relation, IsList: true, Relation: &datamodel.RelationInfo{Model: "Post"}},
				{Name: "address", Type: datamodel.Relation, Relation: &datamodel.RelationInfo{Model: "Address"}},
			},
		},
		{
			Name: "Post",
			Fields: []*datamodel.Field{
				{Name: "slug", Type: datamodel.String, IsRequired: true},
				{Name: "version", Type: datamodel.Int, IsRequired: true},
				{Name: "published", Type: datamodel.Boolean},
				{Name: "author", Type: datamodel.Relation, IsRequired: true, Relation: &datamodel.RelationInfo{Model: "User"}},
			},
			UniqueIndexes: []*datamodel.Index{{Fields: []string{"slug", "version"}}},
		},
		{
			Name:       "Address",
			IsEmbedded: true,
			Fields: []*datamodel.Field{
				{Name: "street", Type: datamodel.String},
			},
		},
	}, []*datamodel.EnumDef{{Name: "Role", Values: []string{"ADMIN", "MEMBER"}}})
}

func TestUserScenario(t *testing.T) {
	dm := datamodel.MustNew([]*datamodel.Model{userModel()}, nil)
	qs := NewQuerySchemaBuilder(dm, capability.NewSet(), WithLogger(zaptest.NewLogger(t))).Build()

	if diff := pretty.Compare(fieldNames(qs.Query()), []string{"users", "user"}); diff != "" {
		t.Errorf("unexpected query fields:\n%s", diff)
	}
	if diff := pretty.Compare(fieldNames(qs.Mutation()), []string{
		"createUser", "deleteUser", "updateUser", "upsertUser", "updateManyUsers", "deleteManyUsers",
	}); diff != "" {
		t.Errorf("unexpected mutation fields:\n%s", diff)
	}

	users, _ := qs.Query().Field("users")
	assert.Equal(t, "[User]!", schema.Notation(users.Type))
	assert.Equal(t, []string{"where", "orderBy", "cursor", "take", "skip"}, argumentNames(users))

	user, _ := qs.Query().Field("user")
	assert.Equal(t, "User", schema.Notation(user.Type))
	require.Len(t, user.Arguments, 1)
	assert.Equal(t, "where", user.Arguments[0].Name)
	assert.Equal(t, "UserWhereUniqueInput!", schema.Notation(user.Arguments[0].Type))

	for name, want := range map[string]string{
		"createUser":      "User!",
		"deleteUser":      "User",
		"updateUser":      "User",
		"upsertUser":      "User!",
		"updateManyUsers": "BatchPayload!",
		"deleteManyUsers": "BatchPayload!",
	} {
		f, ok := qs.Mutation().Field(name)
		require.True(t, ok, name)
		assert.Equal(t, want, schema.Notation(f.Type), name)
	}

	upsert, _ := qs.Mutation().Field("upsertUser")
	assert.Equal(t, []string{"where", "create", "update"}, argumentNames(upsert))
	update, _ := qs.Mutation().Field("updateUser")
	assert.Equal(t, []string{"data", "where"}, argumentNames(update))

	create, ok := qs.FindInputType("UserCreateInput")
	require.True(t, ok)
	assert.Equal(t, []string{"email", "name"}, inputFieldNames(create))
	email, _ := create.Field("email")
	assert.Equal(t, "String!", schema.Notation(email.Type))
	name, _ := create.Field("name")
	assert.Equal(t, "String", schema.Notation(name.Type))

	userType, ok := qs.FindOutputType("User")
	require.True(t, ok)
	assert.Equal(t, []string{"id", "email", "name"}, fieldNames(userType))
}

func TestTagScenario(t *testing.T) {
	dm := datamodel.MustNew([]*datamodel.Model{{
		Name:   "Tag",
		Fields: []*datamodel.Field{{Name: "label", Type: datamodel.String}},
	}}, nil)
	qs := BuildQuerySchema(dm, capability.All())

	assert.Equal(t, []string{"tags"}, fieldNames(qs.Query()))
	assert.Equal(t, []string{"createTag", "updateManyTags", "deleteManyTags"}, fieldNames(qs.Mutation()))

	tags, _ := qs.Query().Field("tags")
	assert.Equal(t, []string{"where", "orderBy", "take", "skip"}, argumentNames(tags))

	_, ok := qs.FindInputType("TagWhereUniqueInput")
	assert.False(t, ok)
}

func TestEmbeddedScenario(t *testing.T) {
	dm := datamodel.MustNew([]*datamodel.Model{{
		Name:       "Address",
		IsEmbedded: true,
		Fields:     []*datamodel.Field{{Name: "street", Type: datamodel.String, IsUnique: true}},
	}}, nil)
	qs := BuildQuerySchema(dm, capability.All())

	assert.Empty(t, qs.Query().Fields())
	assert.Empty(t, qs.Mutation().Fields())

	reachable := schema.Collect(qs.Query(), qs.Mutation())
	for _, o := range reachable.Objects {
		assert.NotEqual(t, "Address", o.Name())
	}
	assert.Empty(t, reachable.Inputs)
}

func TestEmptyDataModel(t *testing.T) {
	dm := datamodel.MustNew(nil, nil)
	qs := BuildQuerySchema(dm, capability.All())

	assert.Empty(t, qs.Query().Fields())
	assert.Empty(t, qs.Mutation().Fields())
	assert.Empty(t, qs.InputTypes())

	outputs := qs.OutputTypes()
	require.Len(t, outputs, 2)
	assert.Same(t, qs.Query(), outputs[0])
	assert.Same(t, qs.Mutation(), outputs[1])
}

func TestModelWithoutSettableFields(t *testing.T) {
	dm := datamodel.MustNew([]*datamodel.Model{{
		Name:   "Counter",
		Fields: []*datamodel.Field{{Name: "id", Type: datamodel.ID, IsID: true, IsRequired: true, IsAutoGenerated: true}},
	}}, nil)
	qs := BuildQuerySchema(dm, capability.NewSet())

	create, ok := qs.Mutation().Field("createCounter")
	require.True(t, ok)
	assert.Empty(t, create.Arguments)

	upsert, ok := qs.Mutation().Field("upsertCounter")
	require.True(t, ok)
	assert.Equal(t, []string{"where", "update"}, argumentNames(upsert))

	_, ok = qs.FindInputType("CounterCreateInput")
	assert.False(t, ok)

	// Empty input types are kept.
	update, ok := qs.FindInputType("CounterUpdateInput")
	require.True(t, ok)
	assert.True(t, update.IsEmpty())
}

func TestCollectionCompleteness(t *testing.T) {
	for _, mode := range []BuildMode{Modern, Legacy} {
		t.Run(mode.String(), func(t *testing.T) {
			qs := BuildQuerySchema(blog(), capability.All(), WithBuildMode(mode))

			inputs := map[string]int{}
			for _, in := range qs.InputTypes() {
				inputs[in.Name()]++
			}
			outputs := map[string]int{}
			for _, out := range qs.OutputTypes() {
				outputs[out.Name()]++
			}
			for name, n := range inputs {
				assert.Equal(t, 1, n, "input type %s listed %d times", name, n)
			}
			for name, n := range outputs {
				assert.Equal(t, 1, n, "output type %s listed %d times", name, n)
			}

			reachable := schema.Collect(qs.Query(), qs.Mutation())
			for _, o := range reachable.Objects {
				found, ok := qs.FindOutputType(o.Name())
				if assert.True(t, ok, "object type %s missing", o.Name()) {
					assert.Same(t, o, found)
				}
			}
			for _, in := range reachable.Inputs {
				found, ok := qs.FindInputType(in.Name())
				if assert.True(t, ok, "input type %s missing", in.Name()) {
					assert.Same(t, in, found)
				}
			}
			if t.Failed() {
				t.Log(spew.Sdump(inputs, outputs))
			}
		})
	}
}

func TestIdempotentCaching(t *testing.T) {
	dm := blog()
	user, _ := dm.FindModel("User")
	post, _ := dm.FindModel("Post")

	b := NewQuerySchemaBuilder(dm, capability.All())
	objects := b.objects.Get()
	first := objects.MapModelObjectType(user).Resolve()
	second := objects.MapModelObjectType(user).Resolve()
	require.NotNil(t, first)
	assert.Same(t, first, second)

	inputs := b.inputs.Get()
	c1, ok := inputs.CreateInput(post)
	require.True(t, ok)
	c2, _ := inputs.CreateInput(post)
	assert.Same(t, c1.Resolve(), c2.Resolve())

	filters := b.filters.Get()
	assert.Same(t, filters.WhereInput(user).Resolve(), filters.WhereInput(user).Resolve())

	n := objects.cache.len()
	objects.MapModelObjectType(post)
	assert.Equal(t, n, objects.cache.len())
}

func TestRelationCycles(t *testing.T) {
	qs := BuildQuerySchema(blog(), capability.All())

	user, ok := qs.FindOutputType("User")
	require.True(t, ok)
	posts, ok := user.Field("posts")
	require.True(t, ok)
	assert.Equal(t, "[Post!]!", schema.Notation(posts.Type))

	post := schema.Named(posts.Type).(schema.ObjectRef).Resolve()
	require.NotNil(t, post)
	author, ok := post.Field("author")
	require.True(t, ok)
	assert.Same(t, user, author.Type.(schema.ObjectRef).Resolve())

	address, ok := user.Field("address")
	require.True(t, ok)
	assert.Equal(t, "Address", schema.Notation(address.Type))
	_, ok = qs.FindOutputType("Address")
	assert.True(t, ok)

	create, ok := qs.FindInputType("UserCreateInput")
	require.True(t, ok)
	assert.Equal(t, []string{"email", "role", "nicknames", "meta", "posts", "address"}, inputFieldNames(create))

	nested, ok := qs.FindInputType("UserCreatePostsInput")
	require.True(t, ok)
	assert.Equal(t, []string{"create", "connect"}, inputFieldNames(nested))

	// Embedded models cannot be connected.
	nestedAddress, ok := qs.FindInputType("UserCreateAddressInput")
	require.True(t, ok)
	assert.Equal(t, []string{"create"}, inputFieldNames(nestedAddress))

	updateAuthor, ok := qs.FindInputType("PostUpdateAuthorInput")
	require.True(t, ok)
	assert.Equal(t, []string{"create", "connect", "update"}, inputFieldNames(updateAuthor))

	updatePosts, ok := qs.FindInputType("UserUpdatePostsInput")
	require.True(t, ok)
	assert.Equal(t, []string{"create", "connect", "set", "disconnect", "delete", "deleteMany"}, inputFieldNames(updatePosts))
}

func TestCompoundUnique(t *testing.T) {
	qs := BuildQuerySchema(blog(), capability.NewSet())

	unique, ok := qs.FindInputType("PostWhereUniqueInput")
	require.True(t, ok)
	assert.Equal(t, []string{"slug_version"}, inputFieldNames(unique))

	compound, ok := qs.FindInputType("PostSlugVersionCompoundUniqueInput")
	require.True(t, ok)
	slug, _ := compound.Field("slug")
	assert.Equal(t, "String!", schema.Notation(slug.Type))

	assert.Contains(t, fieldNames(qs.Query()), "post")
	assert.Contains(t, fieldNames(qs.Mutation()), "upsertPost")
}

func TestRedundantUniqueIndex(t *testing.T) {
	user := userModel()
	user.UniqueIndexes = []*datamodel.Index{
		{Fields: []string{"email"}},
		{Name: "emailName", Fields: []string{"email", "name"}},
	}
	qs := BuildQuerySchema(datamodel.MustNew([]*datamodel.Model{user}, nil), capability.NewSet())

	unique, ok := qs.FindInputType("UserWhereUniqueInput")
	require.True(t, ok)
	if diff := pretty.Compare(inputFieldNames(unique), []string{"id", "email", "emailName"}); diff != "" {
		t.Errorf("unexpected unique selectors:\n%s", diff)
	}
	_, ok = qs.FindInputType("UserEmailNameCompoundUniqueInput")
	assert.True(t, ok)
}

func TestConflictingUniqueIndexes(t *testing.T) {
	for _, tc := range []struct {
		name    string
		indexes []*datamodel.Index
	}{
		{name: "named like a field", indexes: []*datamodel.Index{{Name: "name", Fields: []string{"email", "name"}}}},
		{name: "same fields twice", indexes: []*datamodel.Index{
			{Fields: []string{"email", "name"}},
			{Name: "byNameEmail", Fields: []string{"name", "email"}},
		}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			user := userModel()
			user.UniqueIndexes = tc.indexes
			_, err := datamodel.New([]*datamodel.Model{user}, nil)
			assert.ErrorIs(t, err, datamodel.ErrInvalidIndex)
		})
	}
}

func TestReservedTypeNames(t *testing.T) {
	for _, tc := range []struct {
		name   string
		models []*datamodel.Model
		enums  []*datamodel.EnumDef
	}{
		{name: "BatchPayload model", models: []*datamodel.Model{{
			Name: "BatchPayload",
			Fields: []*datamodel.Field{
				{Name: "id", Type: datamodel.ID, IsID: true},
				{Name: "label", Type: datamodel.String},
			},
		}}},
		{name: "Query model", models: []*datamodel.Model{userModel(), {
			Name:   "Query",
			Fields: []*datamodel.Field{{Name: "id", Type: datamodel.ID, IsID: true}},
		}}},
		{name: "SortOrder enum", models: []*datamodel.Model{userModel()}, enums: []*datamodel.EnumDef{
			{Name: "SortOrder", Values: []string{"UP", "DOWN"}},
		}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := datamodel.New(tc.models, tc.enums)
			assert.ErrorIs(t, err, datamodel.ErrReservedName)
		})
	}

	qs := BuildQuerySchema(datamodel.MustNew([]*datamodel.Model{userModel()}, nil), capability.All())
	batch, ok := qs.FindOutputType("BatchPayload")
	require.True(t, ok)
	assert.Equal(t, []string{"count"}, fieldNames(batch))

	outputs := map[string]int{}
	for _, out := range qs.OutputTypes() {
		outputs[out.Name()]++
	}
	assert.Equal(t, 1, outputs["Query"])
	assert.Equal(t, 1, outputs["BatchPayload"])

	for _, e := range qs.Enums() {
		if e.Name == "SortOrder" {
			assert.Equal(t, []string{"asc", "desc"}, e.Values)
		}
	}
}

func TestModernFilters(t *testing.T) {
	qs := BuildQuerySchema(blog(), capability.All())

	where, ok := qs.FindInputType("UserWhereInput")
	require.True(t, ok)
	if diff := pretty.Compare(inputFieldNames(where), []string{
		"AND", "OR", "NOT", "id", "email", "role", "nicknames", "meta", "posts", "address",
	}); diff != "" {
		t.Errorf("unexpected UserWhereInput fields:\n%s", diff)
	}

	and, _ := where.Field("AND")
	assert.Equal(t, "[UserWhereInput!]", schema.Notation(and.Type))
	posts, _ := where.Field("posts")
	assert.Equal(t, "PostListRelationFilter", schema.Notation(posts.Type))
	nicknames, _ := where.Field("nicknames")
	assert.Equal(t, "StringListFilter", schema.Notation(nicknames.Type))
	meta, _ := where.Field("meta")
	assert.Equal(t, "JSONFilter", schema.Notation(meta.Type))

	stringFilter, ok := qs.FindInputType("StringFilter")
	require.True(t, ok)
	assert.Equal(t, []string{
		"equals", "not", "in", "notIn", "lt", "lte", "gt", "gte", "contains", "startsWith", "endsWith", "mode",
	}, inputFieldNames(stringFilter))

	roleFilter, ok := qs.FindInputType("RoleFilter")
	require.True(t, ok)
	assert.Equal(t, []string{"equals", "not", "in", "notIn"}, inputFieldNames(roleFilter))

	orderBy, ok := qs.FindInputType("UserOrderByInput")
	require.True(t, ok)
	assert.Equal(t, []string{"id", "email", "role"}, inputFieldNames(orderBy))

	var enums []string
	for _, e := range qs.Enums() {
		enums = append(enums, e.Name)
	}
	assert.Equal(t, []string{"QueryMode", "Role", "SortOrder"}, enums)
}

func TestLegacyFilters(t *testing.T) {
	qs := BuildQuerySchema(blog(), capability.All(), WithBuildMode(Legacy))

	users, _ := qs.Query().Field("users")
	assert.Equal(t, []string{"where", "orderBy", "skip", "after", "before", "first", "last"}, argumentNames(users))

	orderBy, _ := users.Argument("orderBy")
	enum, ok := schema.Named(orderBy.Type).(*schema.EnumType)
	require.True(t, ok)
	assert.Equal(t, []string{"id_ASC", "id_DESC", "email_ASC", "email_DESC", "role_ASC", "role_DESC"}, enum.Values)

	where, ok := qs.FindInputType("UserWhereInput")
	require.True(t, ok)
	names := inputFieldNames(where)
	for _, want := range []string{"email", "email_not", "email_in", "email_not_in", "email_lt", "email_contains", "email_not_ends_with", "role_in", "meta", "meta_not", "posts_every", "posts_some", "posts_none", "address"} {
		assert.Contains(t, names, want)
	}
	for _, absent := range []string{"nicknames", "role_lt", "meta_in"} {
		assert.NotContains(t, names, absent)
	}

	postWhere, _ := qs.FindInputType("PostWhereInput")
	postNames := inputFieldNames(postWhere)
	assert.Contains(t, postNames, "published_not")
	assert.NotContains(t, postNames, "published_in")

	_, ok = qs.FindInputType("StringFilter")
	assert.False(t, ok)
}

func TestCapabilityGating(t *testing.T) {
	qs := BuildQuerySchema(blog(), capability.NewSet())

	where, _ := qs.FindInputType("UserWhereInput")
	assert.Equal(t, []string{"AND", "OR", "NOT", "id", "email", "role"}, inputFieldNames(where))

	stringFilter, _ := qs.FindInputType("StringFilter")
	assert.NotContains(t, inputFieldNames(stringFilter), "mode")

	user, _ := qs.FindOutputType("User")
	posts, _ := user.Field("posts")
	assert.Empty(t, posts.Arguments)

	paginated := BuildQuerySchema(blog(), capability.NewSet(capability.PaginatedRelations))
	user, _ = paginated.FindOutputType("User")
	posts, _ = user.Field("posts")
	assert.Equal(t, []string{"where", "orderBy", "cursor", "take", "skip"}, argumentNames(posts))
}

func TestPluralOverrides(t *testing.T) {
	dm := datamodel.MustNew([]*datamodel.Model{{
		Name:   "Person",
		Fields: []*datamodel.Field{{Name: "id", Type: datamodel.ID, IsID: true}},
	}}, nil)
	qs := BuildQuerySchema(dm, capability.NewSet(), WithPluralOverrides(map[string]string{"Person": "Persons"}))

	assert.Equal(t, "persons", qs.Query().Fields()[0].Name)
	assert.Contains(t, fieldNames(qs.Mutation()), "deleteManyPersons")
}

func TestBuildTwicePanics(t *testing.T) {
	b := NewQuerySchemaBuilder(blog(), capability.All())
	b.Build()
	assert.Panics(t, func() { b.Build() })
}

func TestLeakedReferencePanics(t *testing.T) {
	b := NewQuerySchemaBuilder(blog(), capability.All())
	_, release := b.filters.Downgrade().MustUpgrade()
	assert.Panics(t, func() { b.Build() })
	release()
}

func TestParseBuildMode(t *testing.T) {
	for in, want := range map[string]BuildMode{"": Modern, "modern": Modern, " Legacy ": Legacy} {
		got, err := ParseBuildMode(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseBuildMode("ancient")
	assert.Error(t, err)
	assert.Equal(t, "BuildMode(7)", BuildMode(7).String())
}
