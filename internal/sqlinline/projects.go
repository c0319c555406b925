package sqlinline

const QInsertProject = `--sql 3c1f2a9e-5b44-4d1a-9c7e-2f8d6a01b4c5
insert into projects (id, device_id, title, theme, brief_json, script_json, step, locale, aspect_ratio, created_at, updated_at)
values ($1::uuid, $2::text, $3::text, $4::text, $5::jsonb, null, $6::text, $7::text, $8::text, now(), now());
`

const QSelectProjectByID = `--sql 7d2e4b11-8a3f-42cd-bb6a-91c5d0e7f832
select id, device_id, title, theme, brief_json, coalesce(script_json, 'null'::jsonb), step, locale, aspect_ratio, created_at, updated_at
from projects
where id = $1::uuid;
`

const QListProjectsByDevice = `--sql 9a6b1c44-2d7e-48f3-a5b9-6e0c3f82d714
select id, device_id, title, theme, brief_json, coalesce(script_json, 'null'::jsonb), step, locale, aspect_ratio, created_at, updated_at
from projects
where device_id = $1::text
order by created_at desc
limit $2::int offset $3::int;
`

const QUpdateProjectScript = `--sql 1e8f3d62-4c9a-4b07-8d21-5a7e6b94c038
update projects
set script_json = $2::jsonb,
    title = coalesce(nullif($3::text, ''), title),
    step = $4::text,
    updated_at = now()
where id = $1::uuid;
`

const QAdvanceProjectStep = `--sql 5b0d7e29-9f14-4a68-bc35-d82a41f6e907
update projects
set step = $2::text, updated_at = now()
where id = $1::uuid;
`
